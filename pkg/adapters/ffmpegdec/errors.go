package ffmpegdec

import "errors"

var (
	// ErrFFmpegNotFound is returned when no usable ffmpeg binary exists
	// on the system.
	ErrFFmpegNotFound = errors.New("ffmpeg not found")

	// ErrFFprobeNotFound is returned when no usable ffprobe binary
	// exists on the system.
	ErrFFprobeNotFound = errors.New("ffprobe not found")

	// ErrNotOpen is returned when frames are requested before Open.
	ErrNotOpen = errors.New("decoder not open")
)
