package ports

import (
	"image"
)

// FallbackFPS is substituted when a container reports a non-positive
// frame rate. Playback still works in this degraded mode, but frame/time
// conversions are approximations.
const FallbackFPS = 30.0

// MediaInfo describes an opened video stream.
type MediaInfo struct {
	Path        string
	FPS         float64
	TotalFrames int64
	Width       int
	Height      int
}

// DurationMs returns the stream duration in milliseconds.
func (m MediaInfo) DurationMs() int64 {
	if m.FPS <= 0 {
		return 0
	}
	return int64(float64(m.TotalFrames) / m.FPS * 1000)
}

// FrameToMs converts a frame index to a position in milliseconds.
func (m MediaInfo) FrameToMs(frame int64) int64 {
	if m.FPS <= 0 {
		return 0
	}
	return int64(float64(frame) / m.FPS * 1000)
}

// MsToFrame converts a position in milliseconds to a frame index,
// clamped to the valid range [0, TotalFrames-1].
func (m MediaInfo) MsToFrame(ms int64) int64 {
	if m.FPS <= 0 {
		return 0
	}
	return m.ClampFrame(int64(float64(ms) / 1000 * m.FPS))
}

// ClampFrame clamps a frame index to [0, TotalFrames-1].
func (m MediaInfo) ClampFrame(frame int64) int64 {
	if frame < 0 {
		return 0
	}
	if m.TotalFrames > 0 && frame > m.TotalFrames-1 {
		return m.TotalFrames - 1
	}
	return frame
}

// FrameDecoder abstracts sequential, seekable access to the frames of a
// single video stream. Implementations are not safe for concurrent use;
// callers serialize access.
type FrameDecoder interface {
	// Open prepares the decoder for the given file and returns the
	// stream metadata. A freshly opened decoder is positioned at frame 0.
	Open(path string) (MediaInfo, error)

	// ReadNext decodes and returns the next frame in sequence.
	// It returns ok=false at end of stream or on a read failure,
	// which callers treat as a clean end of playback.
	ReadNext() (img image.Image, ok bool)

	// SeekToFrame repositions the decoder so that the next ReadNext
	// returns the frame at the given index. Out-of-range indices are
	// clamped to the valid range.
	SeekToFrame(frame int64) error

	// Close releases decoder resources. Close is idempotent.
	Close() error
}
