package player

import (
	"sync"
	"testing"
	"time"
)

type seekRecorder struct {
	mu    sync.Mutex
	seeks []int64
}

func (r *seekRecorder) seek(pos int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeks = append(r.seeks, pos)
}

func (r *seekRecorder) all() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.seeks))
	copy(out, r.seeks)
	return out
}

func TestThrottleCoalescesRapidMoves(t *testing.T) {
	rec := &seekRecorder{}
	th := NewSeekThrottle(50*time.Millisecond, rec.seek)

	th.Begin()
	for i := int64(0); i < 20; i++ {
		th.Move(i * 100)
		time.Sleep(2 * time.Millisecond)
	}
	th.End(1900)

	seeks := rec.all()
	if len(seeks) == 0 {
		t.Fatal("no seeks issued")
	}
	// 20 moves in ~40ms fit inside one debounce interval: at most the
	// timer firing plus the release seek.
	if len(seeks) > 3 {
		t.Errorf("issued %d seeks for 20 rapid moves, want at most 3", len(seeks))
	}
	if seeks[len(seeks)-1] != 1900 {
		t.Errorf("final seek = %d, want release position 1900", seeks[len(seeks)-1])
	}
}

func TestThrottleTimerFiresMidGesture(t *testing.T) {
	rec := &seekRecorder{}
	th := NewSeekThrottle(20*time.Millisecond, rec.seek)

	th.Begin()
	th.Move(500)
	time.Sleep(60 * time.Millisecond)

	seeks := rec.all()
	if len(seeks) != 1 || seeks[0] != 500 {
		t.Errorf("mid-gesture seeks = %v, want [500]", seeks)
	}
	th.End(500)
}

func TestThrottleEndIsSynchronous(t *testing.T) {
	rec := &seekRecorder{}
	th := NewSeekThrottle(time.Hour, rec.seek) // timer never fires

	th.Begin()
	th.Move(100)
	th.Move(200)
	th.End(250)

	seeks := rec.all()
	if len(seeks) != 1 || seeks[0] != 250 {
		t.Errorf("seeks = %v, want exactly [250]", seeks)
	}
}

func TestThrottleDraggingFlag(t *testing.T) {
	th := NewSeekThrottle(time.Hour, func(int64) {})

	if th.Dragging() {
		t.Error("dragging before Begin")
	}
	th.Begin()
	if !th.Dragging() {
		t.Error("not dragging after Begin")
	}
	th.End(0)
	if th.Dragging() {
		t.Error("still dragging after End")
	}
}

func TestThrottleNoTimerSeekAfterEnd(t *testing.T) {
	rec := &seekRecorder{}
	th := NewSeekThrottle(30*time.Millisecond, rec.seek)

	th.Begin()
	th.Move(100)
	th.End(150)
	time.Sleep(60 * time.Millisecond)

	seeks := rec.all()
	if len(seeks) != 1 || seeks[0] != 150 {
		t.Errorf("seeks = %v, want only the release seek [150]", seeks)
	}
}
