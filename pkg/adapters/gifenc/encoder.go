// Package gifenc implements the animation encoder port with the
// standard GIF encoder, quantizing each frame to a palette whose
// size follows the requested quality.
package gifenc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"

	"github.com/user/vidgif/pkg/ports"
)

// ErrNotBegun is returned when frames are appended before Begin.
var ErrNotBegun = errors.New("encoder not initialized")

// Encoder implements ports.AnimationEncoder.
type Encoder struct {
	width   int
	height  int
	delay   int // per-frame delay in 1/100s, GIF's native unit
	loop    int
	palette color.Palette
	anim    *gif.GIF
}

// New creates a GIF encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin initializes the encoder for frames of the given size and delay.
func (e *Encoder) Begin(width, height, delayMs int, opts ports.EncoderOptions) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if delayMs < 0 {
		delayMs = 0
	}
	e.width = width
	e.height = height
	e.delay = delayMs / 10
	e.loop = opts.Loop
	e.palette = qualityPalette(opts.Quality)
	e.anim = &gif.GIF{LoopCount: opts.Loop}
	return nil
}

// qualityPalette builds the quantization palette for a 0-100 quality
// setting: a uniform RGB cube whose side grows with quality, plus a
// gray ramp so gradients and dark scenes keep some tonal depth. An
// unset quality defaults to 85.
func qualityPalette(quality int) color.Palette {
	if quality <= 0 {
		quality = 85
	}
	if quality > 100 {
		quality = 100
	}
	side := 2 + quality/20
	if side > 6 {
		side = 6
	}
	pal := make(color.Palette, 0, side*side*side+16)
	for r := 0; r < side; r++ {
		for g := 0; g < side; g++ {
			for b := 0; b < side; b++ {
				pal = append(pal, color.RGBA{
					R: uint8(r * 255 / (side - 1)),
					G: uint8(g * 255 / (side - 1)),
					B: uint8(b * 255 / (side - 1)),
					A: 255,
				})
			}
		}
	}
	for i := 0; i < 16; i++ {
		v := uint8(i * 255 / 15)
		pal = append(pal, color.RGBA{R: v, G: v, B: v, A: 255})
	}
	return pal
}

// AppendFrame quantizes and adds one frame.
func (e *Encoder) AppendFrame(img image.Image) error {
	if e.anim == nil {
		return ErrNotBegun
	}
	bounds := image.Rect(0, 0, e.width, e.height)
	paletted := image.NewPaletted(bounds, e.palette)
	// Floyd-Steinberg hides most of the banding the coarser
	// low-quality palettes would otherwise produce on gradients.
	draw.FloydSteinberg.Draw(paletted, bounds, img, img.Bounds().Min)
	e.anim.Image = append(e.anim.Image, paletted)
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

// End encodes the accumulated frames and resets the encoder.
func (e *Encoder) End() ([]byte, error) {
	if e.anim == nil {
		return nil, ErrNotBegun
	}
	if len(e.anim.Image) == 0 {
		return nil, errors.New("no frames to encode")
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, e.anim); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	e.anim = nil
	return buf.Bytes(), nil
}

var _ ports.AnimationEncoder = (*Encoder)(nil)
