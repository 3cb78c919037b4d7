// Package session coordinates one media player session: the video
// pump, the audio transport that shadows it, clip markers, and the
// export pipeline. All methods are safe for concurrent use.
package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/user/vidgif/pkg/export"
	"github.com/user/vidgif/pkg/player"
	"github.com/user/vidgif/pkg/ports"
)

// ErrNoMarkers is returned when an export is requested without both
// clip markers placed.
var ErrNoMarkers = errors.New("clip markers not set")

const defaultVolume = 100

// Config wires a session's collaborators.
type Config struct {
	Logger ports.Logger
	// NewDecoder creates decoders. The session makes one for playback
	// and a fresh one per export or preview.
	NewDecoder func() ports.FrameDecoder
	// NewEncoder creates animation encoders for exports.
	NewEncoder func() ports.AnimationEncoder
	// Audio is the optional audio transport. A nil audio output gives
	// silent playback.
	Audio ports.AudioOutput
	// Direct is the optional one-shot export path.
	Direct export.DirectEncoder
	// FS handles export output writes.
	FS ports.FileSystem
	// SeekDelay overrides the scrub debounce interval when positive.
	SeekDelay time.Duration
}

type markers struct {
	startSec float64
	endSec   float64
	hasStart bool
	hasEnd   bool
}

// Session is the top-level playback and export coordinator.
type Session struct {
	log        ports.Logger
	pump       *player.Pump
	audio      ports.AudioOutput
	throttle   *player.SeekThrottle
	limiter    *player.StepLimiter
	pipeline   *export.Pipeline
	newDecoder func() ports.FrameDecoder

	exports chan export.ProgressEvent
	closed  chan struct{}
	wg      sync.WaitGroup

	mu           sync.Mutex
	path         string
	marks        markers
	volume       int
	prevVolume   int
	muted        bool
	exportCancel context.CancelFunc
}

// New creates a session.
func New(cfg Config) *Session {
	s := &Session{
		log:        cfg.Logger.WithComponent("session"),
		pump:       player.NewPump(cfg.NewDecoder(), cfg.Logger),
		audio:      cfg.Audio,
		limiter:    player.NewStepLimiter(),
		newDecoder: cfg.NewDecoder,
		exports:    make(chan export.ProgressEvent, 64),
		closed:     make(chan struct{}),
		volume:     defaultVolume,
		prevVolume: defaultVolume,
	}
	s.throttle = player.NewSeekThrottle(cfg.SeekDelay, func(ms int64) {
		if err := s.seekMs(ms); err != nil {
			s.log.Warn("scrub seek failed: %s", err)
		}
	})
	s.pipeline = export.NewPipeline(export.Options{
		NewDecoder: cfg.NewDecoder,
		NewEncoder: cfg.NewEncoder,
		Direct:     cfg.Direct,
		FS:         cfg.FS,
	}, cfg.Logger)

	// A natural end of the video stream must silence the audio track
	// too, not just report EventFinished.
	s.pump.OnFinished(func() {
		s.audioDo(func(a ports.AudioOutput) error { return a.Stop() })
	})

	if s.audio != nil {
		s.wg.Add(1)
		go s.watchAudio()
	}
	return s
}

// Events returns the playback event channel.
func (s *Session) Events() <-chan player.Event {
	return s.pump.Events()
}

// ExportEvents returns the channel that carries progress for all
// exports started on this session.
func (s *Session) ExportEvents() <-chan export.ProgressEvent {
	return s.exports
}

// Load opens a media file for playback, resets the clip markers and
// re-arms the audio transport. Audio failures are logged and playback
// continues silent.
func (s *Session) Load(path string) error {
	if err := s.pump.Load(path); err != nil {
		return err
	}
	s.mu.Lock()
	s.path = path
	s.marks = markers{}
	volume := s.effectiveVolume()
	s.mu.Unlock()

	if s.audio != nil {
		if err := s.audio.Open(path); err != nil {
			s.log.Warn("Audio backend unavailable, continuing without sound: %s", err)
		} else {
			s.applyAudioVolume(volume)
		}
	}
	s.log.Info("Loaded %s", path)
	return nil
}

// Play starts or resumes playback, video and audio together.
func (s *Session) Play() error {
	if err := s.pump.Play(); err != nil {
		return err
	}
	s.audioDo(func(a ports.AudioOutput) error { return a.Play() })
	return nil
}

// Pause suspends playback.
func (s *Session) Pause() error {
	if err := s.pump.Pause(); err != nil {
		return err
	}
	s.audioDo(func(a ports.AudioOutput) error { return a.Pause() })
	return nil
}

// TogglePlay flips between playing and paused.
func (s *Session) TogglePlay() error {
	if s.pump.State() == player.StatePlaying {
		return s.Pause()
	}
	return s.Play()
}

// Stop halts playback and rewinds to the start.
func (s *Session) Stop() error {
	if err := s.pump.Stop(); err != nil {
		return err
	}
	s.audioDo(func(a ports.AudioOutput) error { return a.Stop() })
	return nil
}

// State returns the playback state.
func (s *Session) State() player.State {
	return s.pump.State()
}

// Info returns the loaded media metadata.
func (s *Session) Info() (ports.MediaInfo, bool) {
	return s.pump.Info()
}

// SeekToSec jumps to an absolute position in seconds.
func (s *Session) SeekToSec(sec float64) error {
	return s.seekMs(int64(sec * 1000))
}

// BeginScrub marks the start of a scrub gesture. While scrubbing,
// position updates from the pump are suppressed (AcceptsPositionUpdates
// reports false) so the gesture owns the slider.
func (s *Session) BeginScrub() {
	s.throttle.Begin()
}

// Scrub records an intermediate scrub position. Rapid updates coalesce
// into a bounded number of real seeks.
func (s *Session) Scrub(positionMs int64) {
	s.throttle.Move(positionMs)
}

// EndScrub releases the gesture with a final exact seek.
func (s *Session) EndScrub(positionMs int64) {
	s.throttle.End(positionMs)
}

// AcceptsPositionUpdates reports whether pump-driven position updates
// should be applied to position displays right now.
func (s *Session) AcceptsPositionUpdates() bool {
	return !s.throttle.Dragging()
}

// StepForward advances a single frame, subject to the step rate
// limiter. Denied steps are dropped.
func (s *Session) StepForward() error {
	if !s.limiter.Allow() {
		s.stepDenied()
		return nil
	}
	if err := s.pump.StepForward(); err != nil {
		return err
	}
	s.syncAudioPosition()
	return nil
}

// StepBackward rewinds a single frame, subject to the step rate
// limiter.
func (s *Session) StepBackward() error {
	if !s.limiter.Allow() {
		s.stepDenied()
		return nil
	}
	if err := s.pump.StepBackward(); err != nil {
		return err
	}
	s.syncAudioPosition()
	return nil
}

// stepDenied reports a rate-limited frame step. A tripped lockout is
// worth telling the user about; mere spacing enforcement is not.
func (s *Session) stepDenied() {
	if s.limiter.Locked() {
		s.log.Warn("Stepping too fast, frame steps paused briefly")
	} else {
		s.log.Debug("step request dropped by rate limiter")
	}
}

// SetVolume sets the playback volume in percent (0-100). Setting a
// positive volume while muted unmutes.
func (s *Session) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.mu.Lock()
	s.volume = percent
	if percent > 0 {
		s.muted = false
	}
	v := s.effectiveVolume()
	s.mu.Unlock()
	s.applyAudioVolume(v)
}

// ToggleMute silences the audio, remembering the previous volume so a
// second toggle restores it.
func (s *Session) ToggleMute() {
	s.mu.Lock()
	if s.muted {
		s.muted = false
		s.volume = s.prevVolume
	} else {
		s.muted = true
		s.prevVolume = s.volume
	}
	v := s.effectiveVolume()
	s.mu.Unlock()
	s.applyAudioVolume(v)
}

// Volume returns the current volume in percent.
func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Muted reports whether audio is muted.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// SetMarkerStart places the clip start marker.
func (s *Session) SetMarkerStart(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sec < 0 {
		sec = 0
	}
	s.marks.startSec = sec
	s.marks.hasStart = true
}

// SetMarkerEnd places the clip end marker.
func (s *Session) SetMarkerEnd(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sec < 0 {
		sec = 0
	}
	s.marks.endSec = sec
	s.marks.hasEnd = true
}

// ClearMarkers removes both clip markers.
func (s *Session) ClearMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = markers{}
}

// Markers returns the clip markers. ok is false until both are placed.
func (s *Session) Markers() (startSec, endSec float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marks.startSec, s.marks.endSec, s.marks.hasStart && s.marks.hasEnd
}

// BuildJob assembles an export job from the loaded media, the clip
// markers and the given output parameters.
func (s *Session) BuildJob(outputPath string, fps, width, height, quality int) (export.Job, error) {
	info, loaded := s.pump.Info()
	if !loaded {
		return export.Job{}, player.ErrNoMedia
	}
	start, end, ok := s.Markers()
	if !ok {
		return export.Job{}, ErrNoMarkers
	}
	job := export.Job{
		SourcePath: info.Path,
		OutputPath: outputPath,
		StartSec:   start,
		EndSec:     end,
		FPS:        fps,
		Width:      width,
		Height:     height,
		Quality:    quality,
	}
	return job, job.Validate()
}

// StartExport launches an export job in the background. Progress is
// delivered on ExportEvents. Only one export runs at a time.
func (s *Session) StartExport(job export.Job) error {
	s.mu.Lock()
	if s.exportCancel != nil {
		s.mu.Unlock()
		return export.ErrExportRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.exportCancel = cancel
	s.mu.Unlock()

	s.log.Info("Exporting %s (%d-%d s) to %s",
		job.SourcePath, int(job.StartSec), int(job.EndSec), job.OutputPath)

	ch := s.pipeline.Run(ctx, job)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		success := false
		for ev := range ch {
			if ev.Done {
				success = true
			}
			select {
			case s.exports <- ev:
			case <-s.closed:
			}
		}
		s.mu.Lock()
		s.exportCancel = nil
		if success {
			// A finished clip consumes its markers.
			s.marks = markers{}
		}
		s.mu.Unlock()
	}()
	return nil
}

// CancelExport aborts the running export, if any.
func (s *Session) CancelExport() {
	s.mu.Lock()
	cancel := s.exportCancel
	s.mu.Unlock()
	if cancel != nil {
		s.log.Info("Export cancelled")
		cancel()
	}
}

// Exporting reports whether an export is in progress.
func (s *Session) Exporting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportCancel != nil
}

// Preview extracts a thumbnail at the given position without touching
// playback.
func (s *Session) Preview(positionSec float64, maxW, maxH int) (image.Image, error) {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()
	if path == "" {
		return nil, player.ErrNoMedia
	}
	return export.FramePreview(s.newDecoder, path, positionSec, maxW, maxH)
}

// Close cancels any running export, stops playback and releases the
// decoder and audio backend.
func (s *Session) Close() error {
	s.CancelExport()
	close(s.closed)
	err := s.pump.Close()
	if s.audio != nil {
		if aerr := s.audio.Close(); err == nil {
			err = aerr
		}
	}
	s.wg.Wait()
	return err
}

// seekMs seeks video and audio to the same absolute position.
func (s *Session) seekMs(ms int64) error {
	if err := s.pump.SeekToMs(ms); err != nil {
		return err
	}
	s.audioDo(func(a ports.AudioOutput) error { return a.SetPositionMs(ms) })
	return nil
}

// syncAudioPosition realigns audio to the pump after a frame step.
func (s *Session) syncAudioPosition() {
	info, ok := s.pump.Info()
	if !ok {
		return
	}
	ms := info.FrameToMs(s.pump.CurrentFrame())
	s.audioDo(func(a ports.AudioOutput) error { return a.SetPositionMs(ms) })
}

// audioDo runs an audio command, demoting failures to warnings so the
// video path never depends on the audio backend.
func (s *Session) audioDo(fn func(ports.AudioOutput) error) {
	if s.audio == nil {
		return
	}
	if err := fn(s.audio); err != nil {
		s.log.Warn("Audio error: %s", err)
	}
}

func (s *Session) applyAudioVolume(v float64) {
	s.audioDo(func(a ports.AudioOutput) error { return a.SetVolume(v) })
}

// effectiveVolume maps the percent volume and mute flag to the backend
// range. Callers hold s.mu.
func (s *Session) effectiveVolume() float64 {
	if s.muted {
		return 0
	}
	return float64(s.volume) / 100
}

// watchAudio forwards asynchronous audio notifications: errors are
// logged and dropped, end-of-media ends the whole playback.
func (s *Session) watchAudio() {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-s.audio.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case ports.AudioEndOfMedia:
				s.log.Debug("audio reached end of media")
				s.pump.Finish()
			case ports.AudioFailure:
				s.log.Warn("Audio error: %s", ev.Err)
			}
		case <-s.closed:
			return
		}
	}
}
