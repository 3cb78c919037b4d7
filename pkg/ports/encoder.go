package ports

import (
	"image"
)

// AnimationEncoder abstracts frame-by-frame encoding of an animated image.
type AnimationEncoder interface {
	// Begin initializes the encoder with the output dimensions and the
	// per-frame display delay.
	Begin(width, height int, delayMs int, opts EncoderOptions) error

	// AppendFrame encodes a single frame. Frames are displayed in the
	// order they are appended.
	AppendFrame(img image.Image) error

	// End finalizes encoding and returns the animation data.
	End() ([]byte, error)
}

// EncoderOptions configures animation encoding parameters.
type EncoderOptions struct {
	Quality int // 0-100, higher is better (affects quantization effort)
	Loop    int // Loop count: 0 loops forever
}
