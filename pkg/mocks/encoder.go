package mocks

import (
	"image"
	"sync"

	"github.com/user/vidgif/pkg/ports"
)

// AnimationEncoder is a mock implementation of ports.AnimationEncoder.
type AnimationEncoder struct {
	BeginFunc       func(width, height, delayMs int, opts ports.EncoderOptions) error
	AppendFrameFunc func(img image.Image) error
	EndFunc         func() ([]byte, error)

	mu sync.Mutex
	// Recorded calls for verification
	BeginCalled bool
	BeginWidth  int
	BeginHeight int
	BeginDelay  int
	Appended    []image.Image
	EndCalled   bool
}

func (m *AnimationEncoder) Begin(width, height, delayMs int, opts ports.EncoderOptions) error {
	m.mu.Lock()
	m.BeginCalled = true
	m.BeginWidth = width
	m.BeginHeight = height
	m.BeginDelay = delayMs
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, delayMs, opts)
	}
	return nil
}

func (m *AnimationEncoder) AppendFrame(img image.Image) error {
	m.mu.Lock()
	m.Appended = append(m.Appended, img)
	m.mu.Unlock()
	if m.AppendFrameFunc != nil {
		return m.AppendFrameFunc(img)
	}
	return nil
}

func (m *AnimationEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.EndCalled = true
	n := len(m.Appended)
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// GIF87a magic plus the frame count, enough to assert on.
	return append([]byte("GIF87a"), byte(n)), nil
}

// AppendedCount returns the number of frames appended so far.
func (m *AnimationEncoder) AppendedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Appended)
}

var _ ports.AnimationEncoder = (*AnimationEncoder)(nil)
