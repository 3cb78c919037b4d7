package player

import (
	"sync"
	"time"
)

// DefaultSeekDelay is the debounce interval for scrub gestures.
const DefaultSeekDelay = 120 * time.Millisecond

// SeekFunc performs one seek to an absolute position in milliseconds.
type SeekFunc func(positionMs int64)

// SeekThrottle coalesces the stream of position updates produced by a
// scrub gesture into a bounded number of actual seeks. Intermediate
// positions are latest-wins: only the most recent one is seeked to when
// the debounce timer fires. Releasing the gesture cancels the timer and
// issues one final, synchronous seek to the exact release position.
type SeekThrottle struct {
	delay time.Duration
	seek  SeekFunc

	mu       sync.Mutex
	timer    *time.Timer
	pending  int64
	dragging bool
}

// NewSeekThrottle creates a throttle that calls seek at most once per
// delay while a gesture is in progress. A non-positive delay selects
// DefaultSeekDelay.
func NewSeekThrottle(delay time.Duration, seek SeekFunc) *SeekThrottle {
	if delay <= 0 {
		delay = DefaultSeekDelay
	}
	return &SeekThrottle{delay: delay, seek: seek}
}

// Begin marks the start of a scrub gesture. While a gesture is in
// progress, Dragging reports true so pump-driven position updates can
// be suppressed.
func (t *SeekThrottle) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dragging = true
}

// Move records an intermediate gesture position and restarts the
// debounce timer. Positions arriving faster than the delay replace one
// another without seeking.
func (t *SeekThrottle) Move(positionMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = positionMs
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, t.fire)
}

// End marks the release of the gesture: any armed timer is cancelled
// and one final seek to the release position runs synchronously before
// End returns.
func (t *SeekThrottle) End(positionMs int64) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.dragging = false
	t.mu.Unlock()
	t.seek(positionMs)
}

// Dragging reports whether a gesture is in progress.
func (t *SeekThrottle) Dragging() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dragging
}

// fire runs when the debounce timer expires mid-gesture.
func (t *SeekThrottle) fire() {
	t.mu.Lock()
	if !t.dragging {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	pos := t.pending
	t.mu.Unlock()
	t.seek(pos)
}
