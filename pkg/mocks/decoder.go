// Package mocks provides hand-written mock implementations of the port
// interfaces for tests.
package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/vidgif/pkg/ports"
)

// FrameDecoder is a mock implementation of ports.FrameDecoder. By
// default it serves Info.TotalFrames synthetic frames whose pixels
// encode their frame index, so tests can verify exactly which frames
// came out and in what order.
type FrameDecoder struct {
	OpenFunc     func(path string) (ports.MediaInfo, error)
	ReadNextFunc func() (image.Image, bool)
	SeekFunc     func(frame int64) error
	CloseFunc    func() error

	// Info is returned by the default Open.
	Info ports.MediaInfo

	mu sync.Mutex
	// Recorded calls for verification
	OpenCalls  []string
	SeekCalls  []int64
	ReadCalls  int
	CloseCalls int

	pos int64
}

func (m *FrameDecoder) Open(path string) (ports.MediaInfo, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, path)
	m.pos = 0
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	info := m.Info
	info.Path = path
	return info, nil
}

func (m *FrameDecoder) ReadNext() (image.Image, bool) {
	m.mu.Lock()
	m.ReadCalls++
	m.mu.Unlock()
	if m.ReadNextFunc != nil {
		return m.ReadNextFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos >= m.Info.TotalFrames {
		return nil, false
	}
	img := IndexedFrame(m.pos, m.Info.Width, m.Info.Height)
	m.pos++
	return img, true
}

func (m *FrameDecoder) SeekToFrame(frame int64) error {
	m.mu.Lock()
	m.SeekCalls = append(m.SeekCalls, frame)
	m.mu.Unlock()
	if m.SeekFunc != nil {
		return m.SeekFunc(frame)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = m.Info.ClampFrame(frame)
	return nil
}

func (m *FrameDecoder) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Position returns the index of the next frame the default ReadNext
// will deliver.
func (m *FrameDecoder) Position() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// SeekHistory returns a copy of the recorded seek targets.
func (m *FrameDecoder) SeekHistory() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.SeekCalls))
	copy(out, m.SeekCalls)
	return out
}

// IndexedFrame builds a solid frame whose red and green channels encode
// the frame index (little-endian).
func IndexedFrame(idx int64, width, height int) *image.RGBA {
	if width < 1 {
		width = 4
	}
	if height < 1 {
		height = 4
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := color.RGBA{R: uint8(idx & 0xff), G: uint8((idx >> 8) & 0xff), B: 0, A: 0xff}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// FrameIndex recovers the index encoded by IndexedFrame. It panics on a
// nil image so tests fail loudly.
func FrameIndex(img image.Image) int64 {
	if img == nil {
		panic("FrameIndex: nil image")
	}
	r, g, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return int64(r>>8) | int64(g>>8)<<8
}

var _ ports.FrameDecoder = (*FrameDecoder)(nil)
