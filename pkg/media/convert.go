// Package media converts decoded frames into display-ready bitmaps.
package media

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// ToDisplayBitmap normalizes a decoded frame into an RGBA bitmap suitable
// for display or encoding. A nil frame yields a small placeholder so the
// caller always has something to show.
func ToDisplayBitmap(img image.Image) *image.RGBA {
	if img == nil {
		return Placeholder(64, 36)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ScaleToFit scales a frame to fit inside maxW x maxH while preserving
// the aspect ratio. Frames smaller than the viewport are kept at their
// native size; scaling only ever shrinks.
func ScaleToFit(img image.Image, maxW, maxH int) *image.RGBA {
	if img == nil || maxW <= 0 || maxH <= 0 {
		return Placeholder(64, 36)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return Placeholder(64, 36)
	}
	sx := float64(maxW) / float64(w)
	sy := float64(maxH) / float64(h)
	s := sx
	if sy < s {
		s = sy
	}
	if s >= 1 {
		return ToDisplayBitmap(img)
	}
	return Resize(img, int(float64(w)*s+0.5), int(float64(h)*s+0.5))
}

// Resize scales a frame to exactly width x height using CatmullRom
// interpolation.
func Resize(img image.Image, width, height int) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Letterbox draws a frame centered on a background canvas of the given
// size, scaled to fit.
func Letterbox(img image.Image, width, height int, bg color.Color) *image.RGBA {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	if img != nil {
		fitted := ScaleToFit(img, width, height)
		fb := fitted.Bounds()
		x := (width - fb.Dx()) / 2
		y := (height - fb.Dy()) / 2
		dc.DrawImage(fitted, x, y)
	}
	return toRGBA(dc.Image())
}

// Placeholder returns a dark bitmap used when no frame is available.
func Placeholder(width, height int) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff})
	dc.Clear()
	dc.SetColor(color.RGBA{R: 0x3c, G: 0x3c, B: 0x3c, A: 0xff})
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, float64(width)-1, float64(height)-1)
	dc.Stroke()
	return toRGBA(dc.Image())
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
