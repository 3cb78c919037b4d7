// Package export implements the GIF clip export pipeline: it pulls a
// frame range from its own decoder, downsamples it in time and space,
// and encodes the result to an animated GIF.
package export

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when the marked clip is empty or
	// reversed. Validation fails before any decoding starts.
	ErrInvalidRange = errors.New("end position must be after start position")

	// ErrNoFramesExtracted is returned when the clip range produced no
	// frames, for example markers placed past the end of the stream.
	ErrNoFramesExtracted = errors.New("no frames extracted from the selected range")

	// ErrExportRunning is returned when an export is started while
	// another one is still in progress.
	ErrExportRunning = errors.New("an export is already running")
)

// Job describes one GIF export.
type Job struct {
	SourcePath string
	OutputPath string
	StartSec   float64 // clip start in the source, seconds
	EndSec     float64 // clip end in the source, seconds
	FPS        int     // output frame rate
	Width      int     // output width in pixels
	Height     int     // output height in pixels
	Quality    int     // 0-100
}

// Validate checks the job parameters. A job that fails validation must
// not touch the source or the output path.
func (j Job) Validate() error {
	if j.SourcePath == "" {
		return errors.New("no source file")
	}
	if j.OutputPath == "" {
		return errors.New("no output path")
	}
	if j.StartSec < 0 {
		return fmt.Errorf("start position %.2fs is negative", j.StartSec)
	}
	if j.EndSec <= j.StartSec {
		return fmt.Errorf("%w: start %.2fs, end %.2fs", ErrInvalidRange, j.StartSec, j.EndSec)
	}
	if j.FPS <= 0 {
		return fmt.Errorf("output fps %d must be positive", j.FPS)
	}
	if j.Width <= 0 || j.Height <= 0 {
		return fmt.Errorf("output size %dx%d must be positive", j.Width, j.Height)
	}
	return nil
}

// DurationSec returns the clip duration in seconds.
func (j Job) DurationSec() float64 {
	return j.EndSec - j.StartSec
}

// SuggestedName returns a default output file name derived from the
// clip markers.
func SuggestedName(startSec, endSec float64) string {
	return fmt.Sprintf("export_%ds-%ds.gif", int(startSec), int(endSec))
}
