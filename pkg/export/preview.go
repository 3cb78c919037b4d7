package export

import (
	"fmt"
	"image"

	"github.com/user/vidgif/pkg/media"
	"github.com/user/vidgif/pkg/ports"
)

// FramePreview extracts a single thumbnail frame at the given position,
// using its own short-lived decoder so playback is undisturbed. The
// result is scaled to fit inside maxW x maxH.
func FramePreview(newDecoder func() ports.FrameDecoder, path string, positionSec float64, maxW, maxH int) (image.Image, error) {
	dec := newDecoder()
	defer dec.Close()

	info, err := dec.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	fps := info.FPS
	if fps <= 0 {
		fps = ports.FallbackFPS
	}
	frame := info.ClampFrame(int64(positionSec * fps))
	if err := dec.SeekToFrame(frame); err != nil {
		return nil, fmt.Errorf("seek to %.2fs: %w", positionSec, err)
	}
	img, ok := dec.ReadNext()
	if !ok {
		return nil, fmt.Errorf("no frame at %.2fs", positionSec)
	}
	return media.ScaleToFit(img, maxW, maxH), nil
}
