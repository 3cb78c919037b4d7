package export

import (
	"fmt"
)

// Size classification thresholds in bytes.
const (
	sizeBandMedium = 10 << 20 // 10 MB
	sizeBandLarge  = 50 << 20 // 50 MB
)

// Duration warning thresholds in seconds.
const (
	WarnDurationSec     = 15
	WarnDurationHardSec = 30
)

// SizeBand classifies an estimated output size.
type SizeBand int

const (
	// SizeSmall is an unremarkable output size.
	SizeSmall SizeBand = iota
	// SizeMedium warrants a caution to the user.
	SizeMedium
	// SizeLarge warrants a prominent warning.
	SizeLarge
)

// EstimateSizeBytes predicts the output size of a job. The model is a
// flat per-frame cost of width*height*3/100 bytes, a rough compression
// ratio that tracks real GIFs well enough to warn about oversized
// clips. The estimate is monotonic in duration, fps and frame area.
func EstimateSizeBytes(j Job) int64 {
	frames := j.DurationSec() * float64(j.FPS)
	if frames < 0 {
		frames = 0
	}
	perFrame := int64(j.Width) * int64(j.Height) * 3 / 100
	return int64(frames * float64(perFrame))
}

// ClassifyEstimate maps an estimated size to a warning band.
func ClassifyEstimate(bytes int64) SizeBand {
	switch {
	case bytes > sizeBandLarge:
		return SizeLarge
	case bytes > sizeBandMedium:
		return SizeMedium
	default:
		return SizeSmall
	}
}

// DurationWarning returns a human-readable caution for long clips, or
// the empty string when the duration is fine.
func DurationWarning(durationSec float64) string {
	switch {
	case durationSec > WarnDurationHardSec:
		return "GIFs longer than 30 seconds can produce very large files"
	case durationSec > WarnDurationSec:
		return "GIFs longer than 15 seconds may produce large files"
	default:
		return ""
	}
}

// FormatFileSize renders a byte count for display.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
