// Package player implements the frame pump that drives video playback,
// plus the input shaping around it (seek throttling, step rate limiting).
package player

import (
	"image"
)

// EventKind identifies the type of a playback event.
type EventKind int

const (
	// EventFrame carries a display-ready frame and its position.
	EventFrame EventKind = iota
	// EventPosition reports the playback position without a frame.
	EventPosition
	// EventDuration reports the media duration after a load.
	EventDuration
	// EventFinished reports that playback reached the end of the stream.
	// It is emitted exactly once per play-through.
	EventFinished
	// EventError reports a playback error.
	EventError
)

// Event is a notification from the pump. Consumers receive events from
// a single channel and dispatch on Kind.
type Event struct {
	Kind       EventKind
	Frame      *image.RGBA // set for EventFrame
	PositionMs int64       // set for EventFrame and EventPosition
	DurationMs int64       // set for EventDuration
	Err        error       // set for EventError
}
