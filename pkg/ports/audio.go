package ports

// AudioEventKind identifies the type of an asynchronous audio notification.
type AudioEventKind int

const (
	// AudioEndOfMedia indicates the audio stream reached its natural end.
	AudioEndOfMedia AudioEventKind = iota
	// AudioFailure indicates a backend error. Audio failures never stop
	// video playback; they are reported and playback continues silent.
	AudioFailure
)

// AudioEvent is an asynchronous notification from the audio backend.
type AudioEvent struct {
	Kind AudioEventKind
	Err  error
}

// AudioOutput abstracts the audio side of playback. All position and
// transport commands are best-effort: implementations report failures
// through errors or Events, and callers must keep video running
// regardless.
type AudioOutput interface {
	// Open loads the audio track of the given media file, paused.
	Open(path string) error

	// Play resumes audio playback.
	Play() error

	// Pause suspends audio playback, keeping the position.
	Pause() error

	// Stop pauses and rewinds to the start.
	Stop() error

	// SetPositionMs jumps to an absolute position in milliseconds.
	SetPositionMs(ms int64) error

	// SetVolume sets the output volume in the range [0.0, 1.0].
	SetVolume(v float64) error

	// Events returns the channel of asynchronous notifications.
	// The channel is closed by Close.
	Events() <-chan AudioEvent

	// Close releases the backend. Close is idempotent.
	Close() error
}
