// Package ffmpeggif encodes a whole clip to GIF in one ffmpeg
// invocation using the palettegen/paletteuse filter pair. It produces
// noticeably better palettes than per-frame quantization and is used as
// the preferred export path when ffmpeg is present; any failure makes
// the caller fall back to frame-by-frame encoding.
package ffmpeggif

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/user/vidgif/pkg/adapters/ffmpegdec"
	"github.com/user/vidgif/pkg/export"
	"github.com/user/vidgif/pkg/ports"
)

// Encoder implements export.DirectEncoder.
type Encoder struct {
	fs ports.FileSystem
}

// New creates a palette-pipeline encoder. The filesystem handles the
// final atomic rename.
func New(fs ports.FileSystem) *Encoder {
	return &Encoder{fs: fs}
}

// Available reports whether the encoder can run on this system.
func Available() bool {
	return ffmpegdec.IsFFmpegAvailable()
}

// EncodeClip renders the job's clip to its output path. The GIF is
// written to a sibling temp file first and renamed into place, so
// cancellation or a crash never leaves a partial output.
func (e *Encoder) EncodeClip(ctx context.Context, job export.Job) error {
	ffmpegPath, err := ffmpegdec.FindFFmpeg()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(job.OutputPath); dir != "" && dir != "." {
		if err := e.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmp := job.OutputPath + ".part"
	args := []string{
		"-y",
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", job.StartSec),
		"-t", fmt.Sprintf("%.3f", job.DurationSec()),
		"-i", job.SourcePath,
		"-vf", paletteFilter(job),
		"-loop", "0",
		"-f", "gif",
		tmp,
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(tmp)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg palette pipeline: %w: %s", err, firstLine(out))
	}
	if err := e.fs.Rename(tmp, job.OutputPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}

// paletteFilter builds the palettegen/paletteuse filter graph for a
// job, sizing the generated palette from the job's quality.
func paletteFilter(job export.Job) string {
	return fmt.Sprintf(
		"fps=%d,scale=%d:%d:flags=lanczos,split[a][b];[a]palettegen=max_colors=%d[p];[b][p]paletteuse",
		job.FPS, job.Width, job.Height, maxColors(job.Quality),
	)
}

// maxColors maps a 0-100 quality to a palette size. An unset quality
// gets the 85 default; the floor of 16 keeps very low settings from
// degenerating into unrecognizable output.
func maxColors(quality int) int {
	if quality <= 0 {
		quality = 85
	}
	if quality > 100 {
		quality = 100
	}
	n := 16 + quality*240/100
	if n > 256 {
		n = 256
	}
	return n
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}

var _ export.DirectEncoder = (*Encoder)(nil)
