package mocks

import (
	"sync"

	"github.com/user/vidgif/pkg/ports"
)

// AudioOutput is a mock implementation of ports.AudioOutput. Tests
// inject asynchronous events with Emit.
type AudioOutput struct {
	OpenFunc          func(path string) error
	PlayFunc          func() error
	PauseFunc         func() error
	StopFunc          func() error
	SetPositionMsFunc func(ms int64) error
	SetVolumeFunc     func(v float64) error

	mu sync.Mutex
	// Recorded calls for verification
	OpenCalls     []string
	PlayCalls     int
	PauseCalls    int
	StopCalls     int
	PositionCalls []int64
	VolumeCalls   []float64
	CloseCalls    int

	events    chan ports.AudioEvent
	closeOnce sync.Once
}

// NewAudioOutput creates a mock audio output with a buffered event
// channel.
func NewAudioOutput() *AudioOutput {
	return &AudioOutput{events: make(chan ports.AudioEvent, 16)}
}

func (m *AudioOutput) Open(path string) error {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, path)
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	return nil
}

func (m *AudioOutput) Play() error {
	m.mu.Lock()
	m.PlayCalls++
	m.mu.Unlock()
	if m.PlayFunc != nil {
		return m.PlayFunc()
	}
	return nil
}

func (m *AudioOutput) Pause() error {
	m.mu.Lock()
	m.PauseCalls++
	m.mu.Unlock()
	if m.PauseFunc != nil {
		return m.PauseFunc()
	}
	return nil
}

func (m *AudioOutput) Stop() error {
	m.mu.Lock()
	m.StopCalls++
	m.mu.Unlock()
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	return nil
}

func (m *AudioOutput) SetPositionMs(ms int64) error {
	m.mu.Lock()
	m.PositionCalls = append(m.PositionCalls, ms)
	m.mu.Unlock()
	if m.SetPositionMsFunc != nil {
		return m.SetPositionMsFunc(ms)
	}
	return nil
}

func (m *AudioOutput) SetVolume(v float64) error {
	m.mu.Lock()
	m.VolumeCalls = append(m.VolumeCalls, v)
	m.mu.Unlock()
	if m.SetVolumeFunc != nil {
		return m.SetVolumeFunc(v)
	}
	return nil
}

func (m *AudioOutput) Events() <-chan ports.AudioEvent {
	return m.events
}

func (m *AudioOutput) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.mu.Unlock()
	m.closeOnce.Do(func() { close(m.events) })
	return nil
}

// Emit injects an asynchronous audio event.
func (m *AudioOutput) Emit(ev ports.AudioEvent) {
	m.events <- ev
}

// Volumes returns a copy of the recorded SetVolume arguments.
func (m *AudioOutput) Volumes() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.VolumeCalls))
	copy(out, m.VolumeCalls)
	return out
}

// Positions returns a copy of the recorded SetPositionMs arguments.
func (m *AudioOutput) Positions() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.PositionCalls))
	copy(out, m.PositionCalls)
	return out
}

var _ ports.AudioOutput = (*AudioOutput)(nil)
