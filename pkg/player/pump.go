package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/vidgif/pkg/media"
	"github.com/user/vidgif/pkg/ports"
)

// ErrNoMedia is returned by transport commands issued before a
// successful Load.
var ErrNoMedia = errors.New("no media loaded")

// State is the playback state of the pump.
type State int

const (
	// StateStopped means no playback loop is running and the position
	// is at the start of the stream.
	StateStopped State = iota
	// StatePlaying means the loop is decoding and emitting frames.
	StatePlaying
	// StatePaused means the loop is running but idle, holding position.
	StatePaused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

const (
	// pausedPollInterval is how long the loop sleeps between checks
	// while paused.
	pausedPollInterval = 16 * time.Millisecond
	// pacingPollInterval is the short sleep between pacing checks,
	// keeping the loop from spinning a core.
	pacingPollInterval = time.Millisecond

	noPendingSeek = int64(-1)
	eventBuffer   = 128
)

// Pump owns a decoder and drives playback from a single loop goroutine.
// Transport commands may be called from any goroutine; decoded frames
// and position updates are delivered on the Events channel.
type Pump struct {
	dec    ports.FrameDecoder
	log    ports.Logger
	events chan Event

	quitOnce sync.Once
	quit     chan struct{}

	// decMu serializes decoder access between the loop and the
	// synchronous part of seek commands. It may wrap short mu
	// sections so a read and its position accounting stay atomic
	// against seeks; mu is never held across a decoder call.
	decMu sync.Mutex

	mu          sync.Mutex
	info        ports.MediaInfo
	loaded      bool
	state       State
	nextFrame   int64 // index of the next frame the decoder will deliver
	pendingSeek int64
	running     bool
	finished    bool
	done        chan struct{}
	stopCh      chan struct{} // closed by stopLoop to release a blocked terminal emit
	finishHook  func()
}

// NewPump creates a pump around the given decoder. The decoder is owned
// by the pump from this point on and must not be shared.
func NewPump(dec ports.FrameDecoder, log ports.Logger) *Pump {
	return &Pump{
		dec:         dec,
		log:         log.WithComponent("pump"),
		events:      make(chan Event, eventBuffer),
		quit:        make(chan struct{}),
		pendingSeek: noPendingSeek,
	}
}

// Events returns the playback event channel. No events are delivered
// after Close returns.
func (p *Pump) Events() <-chan Event {
	return p.events
}

// Load opens a media file, emits its duration and first frame, and
// leaves the pump stopped at frame 0. Loading replaces any previously
// loaded media.
func (p *Pump) Load(path string) error {
	p.stopLoop()

	p.decMu.Lock()
	_ = p.dec.Close()
	info, err := p.dec.Open(path)
	if err != nil {
		p.decMu.Unlock()
		return fmt.Errorf("open %s: %w", path, err)
	}
	if info.FPS <= 0 {
		p.log.Warn("container reports no frame rate, assuming %v fps", ports.FallbackFPS)
		info.FPS = ports.FallbackFPS
	}
	img, ok := p.dec.ReadNext()
	_ = p.dec.SeekToFrame(0)
	p.decMu.Unlock()

	p.mu.Lock()
	p.info = info
	p.loaded = true
	p.state = StateStopped
	p.nextFrame = 0
	p.pendingSeek = noPendingSeek
	p.finished = false
	p.mu.Unlock()

	p.log.Debug("loaded %s: %dx%d, %.2f fps, %d frames",
		path, info.Width, info.Height, info.FPS, info.TotalFrames)

	p.emit(Event{Kind: EventDuration, DurationMs: info.DurationMs()})
	if ok {
		p.emit(Event{Kind: EventFrame, Frame: media.ToDisplayBitmap(img)})
	}
	p.emit(Event{Kind: EventPosition, PositionMs: 0})
	return nil
}

// Info returns the metadata of the loaded media.
func (p *Pump) Info() (ports.MediaInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info, p.loaded
}

// State returns the current playback state.
func (p *Pump) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentFrame returns the index of the next frame to be delivered.
func (p *Pump) CurrentFrame() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextFrame
}

// Play starts or resumes playback. Starting after the stream finished
// replays from the beginning.
func (p *Pump) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNoMedia
	}
	if p.state == StatePlaying {
		return nil
	}
	p.state = StatePlaying
	if !p.running {
		p.running = true
		p.finished = false
		p.done = make(chan struct{})
		p.stopCh = make(chan struct{})
		go p.run(p.done, p.stopCh)
	}
	return nil
}

// OnFinished registers a hook invoked on the end-of-playback
// transition, before EventFinished is delivered. Used to tear down
// coupled resources such as an audio track.
func (p *Pump) OnFinished(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishHook = fn
}

// Pause suspends playback, holding the current position. Pausing a
// stopped pump is a no-op.
func (p *Pump) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNoMedia
	}
	if p.state == StatePlaying {
		p.state = StatePaused
	}
	return nil
}

// Stop halts playback and rewinds to frame 0, emitting the first frame
// and a zero position.
func (p *Pump) Stop() error {
	p.mu.Lock()
	if !p.loaded {
		p.mu.Unlock()
		return ErrNoMedia
	}
	p.mu.Unlock()
	p.stopLoop()

	p.decMu.Lock()
	_ = p.dec.SeekToFrame(0)
	img, ok := p.dec.ReadNext()
	_ = p.dec.SeekToFrame(0)
	p.decMu.Unlock()

	p.mu.Lock()
	p.nextFrame = 0
	p.pendingSeek = noPendingSeek
	p.mu.Unlock()

	if ok {
		p.emit(Event{Kind: EventFrame, Frame: media.ToDisplayBitmap(img)})
	}
	p.emit(Event{Kind: EventPosition, PositionMs: 0})
	return nil
}

// SeekToFrame jumps to the given frame index, clamped to the valid
// range. The target frame is decoded and emitted synchronously so the
// display updates even while paused or stopped; the loop then resumes
// sequential reads from the same frame without skipping or repeating.
func (p *Pump) SeekToFrame(frame int64) error {
	p.mu.Lock()
	if !p.loaded {
		p.mu.Unlock()
		return ErrNoMedia
	}
	info := p.info
	p.mu.Unlock()

	frame = info.ClampFrame(frame)

	p.decMu.Lock()
	if err := p.dec.SeekToFrame(frame); err != nil {
		p.decMu.Unlock()
		return fmt.Errorf("seek to frame %d: %w", frame, err)
	}
	img, ok := p.dec.ReadNext()
	// Rewind so the next sequential read delivers the target frame
	// again. The position update stays inside the decoder section: the
	// loop must never observe the rewound decoder without the pending
	// seek armed.
	_ = p.dec.SeekToFrame(frame)
	p.mu.Lock()
	p.nextFrame = frame
	p.pendingSeek = frame
	p.mu.Unlock()
	p.decMu.Unlock()

	if ok {
		p.emit(Event{
			Kind:       EventFrame,
			Frame:      media.ToDisplayBitmap(img),
			PositionMs: info.FrameToMs(frame),
		})
	}
	p.emit(Event{Kind: EventPosition, PositionMs: info.FrameToMs(frame)})
	return nil
}

// SeekToMs jumps to an absolute position in milliseconds.
func (p *Pump) SeekToMs(ms int64) error {
	p.mu.Lock()
	if !p.loaded {
		p.mu.Unlock()
		return ErrNoMedia
	}
	info := p.info
	p.mu.Unlock()
	return p.SeekToFrame(info.MsToFrame(ms))
}

// StepForward advances one frame. At the last frame it is a no-op.
func (p *Pump) StepForward() error {
	p.mu.Lock()
	if !p.loaded {
		p.mu.Unlock()
		return ErrNoMedia
	}
	next := p.nextFrame + 1
	last := p.info.TotalFrames - 1
	p.mu.Unlock()
	if next > last {
		return nil
	}
	return p.SeekToFrame(next)
}

// StepBackward rewinds one frame. At frame 0 it is a no-op.
func (p *Pump) StepBackward() error {
	p.mu.Lock()
	if !p.loaded {
		p.mu.Unlock()
		return ErrNoMedia
	}
	prev := p.nextFrame - 1
	p.mu.Unlock()
	if prev < 0 {
		return nil
	}
	return p.SeekToFrame(prev)
}

// Finish forces the end-of-playback transition: the loop is joined, the
// position resets to 0 and EventFinished is emitted once. Used when an
// external signal (such as the audio track ending) declares the stream
// over before the video loop notices.
func (p *Pump) Finish() {
	p.mu.Lock()
	if !p.loaded || p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.state = StateStopped
	done := p.done
	running := p.running
	p.mu.Unlock()
	if running {
		<-done
	}
	p.finish(nil)
}

// Close stops playback and releases the decoder.
func (p *Pump) Close() error {
	p.quitOnce.Do(func() { close(p.quit) })
	p.stopLoop()
	p.decMu.Lock()
	defer p.decMu.Unlock()
	return p.dec.Close()
}

// stopLoop transitions to stopped and joins the loop goroutine. The
// stop channel is closed first: a loop blocked delivering a terminal
// event to a full consumer must be released before it can be joined.
func (p *Pump) stopLoop() {
	p.mu.Lock()
	p.state = StateStopped
	done := p.done
	running := p.running
	stop := p.stopCh
	p.stopCh = nil
	p.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	if running {
		<-done
	}
}

// run is the playback loop. One instance runs per Play that starts from
// a stopped pump; it exits when the state returns to stopped or the end
// of the stream is reached. stop is this run's release channel: closed
// by stopLoop so a terminal emit never wedges the join.
func (p *Pump) run(done, stop chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(done)
	}()

	var lastRead time.Time
	for {
		select {
		case <-p.quit:
			return
		default:
		}

		p.mu.Lock()
		if p.state == StateStopped {
			p.mu.Unlock()
			return
		}
		st := p.state
		armed := p.pendingSeek != noPendingSeek
		info := p.info
		p.mu.Unlock()

		// An armed seek lands immediately, bypassing pause and pacing.
		if !armed {
			if st == StatePaused {
				time.Sleep(pausedPollInterval)
				continue
			}
			frameDur := time.Duration(float64(time.Second) / info.FPS)
			if !lastRead.IsZero() && time.Since(lastRead) < frameDur {
				time.Sleep(pacingPollInterval)
				continue
			}
		}

		// The pending seek is consumed under decMu, immediately before
		// the read. Deciding outside the decoder section would let a
		// seek command rewind the decoder between the check and the
		// read, delivering the target frame twice.
		p.decMu.Lock()
		p.mu.Lock()
		target := p.pendingSeek
		if target != noPendingSeek {
			p.pendingSeek = noPendingSeek
			p.nextFrame = target
		}
		p.mu.Unlock()
		if target != noPendingSeek {
			err := p.dec.SeekToFrame(target)
			p.decMu.Unlock()
			if err != nil {
				p.emitTerminal(Event{Kind: EventError, Err: fmt.Errorf("seek to frame %d: %w", target, err)}, stop)
			}
			lastRead = time.Time{} // restart pacing from the seek point
			continue
		}
		img, ok := p.dec.ReadNext()
		if !ok {
			p.decMu.Unlock()
			// Read failure and end of stream are both a clean end of
			// playback.
			p.finish(stop)
			return
		}
		p.mu.Lock()
		idx := p.nextFrame
		p.nextFrame++
		reachedEnd := p.nextFrame >= info.TotalFrames
		p.mu.Unlock()
		p.decMu.Unlock()
		lastRead = time.Now()

		bmp := media.ToDisplayBitmap(img)
		pos := info.FrameToMs(idx)
		p.emit(Event{Kind: EventFrame, Frame: bmp, PositionMs: pos})
		p.emit(Event{Kind: EventPosition, PositionMs: pos})

		if reachedEnd {
			p.finish(stop)
			return
		}
	}
}

// finish performs the end-of-playback transition exactly once per
// play-through. stop is the calling run's release channel, nil when
// invoked outside the loop.
func (p *Pump) finish(stop chan struct{}) {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.finished = true
	p.state = StateStopped
	p.nextFrame = 0
	p.pendingSeek = noPendingSeek
	hook := p.finishHook
	p.mu.Unlock()

	p.decMu.Lock()
	_ = p.dec.SeekToFrame(0)
	p.decMu.Unlock()

	// The hook runs before the event so coupled resources (the audio
	// track) are already halted when the consumer sees EventFinished.
	if hook != nil {
		hook()
	}

	p.log.Debug("playback finished")
	p.emitTerminal(Event{Kind: EventFinished}, stop)
	p.emit(Event{Kind: EventPosition, PositionMs: 0})
}

// emit delivers an event. High-rate frame and position events are
// dropped when the consumer lags; anything else blocks until delivered
// or the pump is closed.
func (p *Pump) emit(ev Event) {
	switch ev.Kind {
	case EventFrame, EventPosition:
		select {
		case p.events <- ev:
		default:
		}
	default:
		p.emitTerminal(ev, nil)
	}
}

// emitTerminal delivers a blocking event from the loop. The run's stop
// channel joins the select so a Stop issued against a saturated
// consumer still gets the loop joined; the event is then delivered only
// if the consumer has room.
func (p *Pump) emitTerminal(ev Event, stop chan struct{}) {
	if stop == nil {
		select {
		case p.events <- ev:
		case <-p.quit:
		}
		return
	}
	select {
	case p.events <- ev:
	case <-stop:
		select {
		case p.events <- ev:
		default:
		}
	case <-p.quit:
	}
}
