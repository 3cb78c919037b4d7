package export

import (
	"context"
	"fmt"
	"math"

	"github.com/user/vidgif/pkg/media"
	"github.com/user/vidgif/pkg/ports"
)

// ProgressEvent reports export progress. Percent grows monotonically
// from 0 to 100. The final event has Done set with the output path, or
// Err set on failure.
type ProgressEvent struct {
	Percent    int
	Done       bool
	OutputPath string
	Err        error
}

// DirectEncoder is an optional fast path that encodes the whole clip in
// one shot, typically by driving an external palette pipeline. Any
// failure makes the pipeline fall back to frame-by-frame encoding.
type DirectEncoder interface {
	EncodeClip(ctx context.Context, job Job) error
}

// Options configures a Pipeline.
type Options struct {
	// NewDecoder creates a fresh decoder for each job. The export
	// decoder is always independent from the one playback uses.
	NewDecoder func() ports.FrameDecoder
	// NewEncoder creates a fresh animation encoder for each job.
	NewEncoder func() ports.AnimationEncoder
	// Direct, when set, is tried before frame-by-frame encoding.
	Direct DirectEncoder
	// FS is used for the atomic output write.
	FS ports.FileSystem
}

// Pipeline runs GIF export jobs.
type Pipeline struct {
	opts Options
	log  ports.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options, log ports.Logger) *Pipeline {
	return &Pipeline{opts: opts, log: log.WithComponent("export")}
}

// Run starts the job on its own goroutine and returns the progress
// channel. The channel is closed after the final event. Cancel the
// context to abort; a cancelled job leaves no output file.
func (p *Pipeline) Run(ctx context.Context, job Job) <-chan ProgressEvent {
	ch := make(chan ProgressEvent, 16)
	go func() {
		defer close(ch)
		p.run(ctx, job, ch)
	}()
	return ch
}

func (p *Pipeline) run(ctx context.Context, job Job, ch chan<- ProgressEvent) {
	if err := job.Validate(); err != nil {
		ch <- ProgressEvent{Err: err}
		return
	}
	ch <- ProgressEvent{Percent: 0}

	if p.opts.Direct != nil {
		err := p.opts.Direct.EncodeClip(ctx, job)
		if err == nil {
			p.log.Debug("palette pipeline produced %s", job.OutputPath)
			ch <- ProgressEvent{Percent: 100}
			ch <- ProgressEvent{Done: true, OutputPath: job.OutputPath, Percent: 100}
			return
		}
		if ctx.Err() != nil {
			ch <- ProgressEvent{Err: ctx.Err()}
			return
		}
		p.log.Warn("Palette pipeline failed, falling back to frame export: %s", err)
	}

	if err := p.encodeFrames(ctx, job, ch); err != nil {
		ch <- ProgressEvent{Err: err}
		return
	}
	ch <- ProgressEvent{Done: true, OutputPath: job.OutputPath, Percent: 100}
}

func (p *Pipeline) encodeFrames(ctx context.Context, job Job, ch chan<- ProgressEvent) error {
	dec := p.opts.NewDecoder()
	defer dec.Close()

	info, err := dec.Open(job.SourcePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", job.SourcePath, err)
	}
	fps := info.FPS
	if fps <= 0 {
		fps = ports.FallbackFPS
	}

	startFrame := int64(job.StartSec * fps)
	endFrame := int64(job.EndSec * fps)
	if info.TotalFrames > 0 && startFrame >= info.TotalFrames {
		return ErrNoFramesExtracted
	}
	// Keep every step-th source frame to hit the requested output rate.
	step := int64(math.Round(fps / float64(job.FPS)))
	if step < 1 {
		step = 1
	}

	enc := p.opts.NewEncoder()
	delayMs := 1000 / job.FPS
	if err := enc.Begin(job.Width, job.Height, delayMs, ports.EncoderOptions{
		Quality: job.Quality,
		Loop:    0,
	}); err != nil {
		return fmt.Errorf("begin encode: %w", err)
	}

	if err := dec.SeekToFrame(startFrame); err != nil {
		return fmt.Errorf("seek to clip start: %w", err)
	}

	// The clip range is half-open: the frame at exactly EndSec is
	// excluded, so a 2-5s clip covers [2s, 5s).
	expected := (endFrame - startFrame + step - 1) / step
	if expected < 1 {
		expected = 1
	}
	var kept int64
	lastPct := 0
	for idx := startFrame; idx < endFrame; idx++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		img, ok := dec.ReadNext()
		if !ok {
			break
		}
		if (idx-startFrame)%step != 0 {
			continue
		}
		frame := media.Resize(img, job.Width, job.Height)
		if err := enc.AppendFrame(frame); err != nil {
			return fmt.Errorf("encode frame %d: %w", idx, err)
		}
		kept++

		// Decoding covers the first 90%, finalization the rest.
		pct := int(kept * 90 / expected)
		if pct > 90 {
			pct = 90
		}
		if pct > lastPct {
			lastPct = pct
			ch <- ProgressEvent{Percent: pct}
		}
	}
	if kept == 0 {
		return ErrNoFramesExtracted
	}

	data, err := enc.End()
	if err != nil {
		return fmt.Errorf("finalize gif: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Write to a sibling temp file and rename, so a crash or cancel
	// never leaves a truncated GIF at the output path.
	tmp := job.OutputPath + ".part"
	if err := p.opts.FS.WriteFile(tmp, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := p.opts.FS.Rename(tmp, job.OutputPath); err != nil {
		_ = p.opts.FS.Remove(tmp)
		return fmt.Errorf("finalize output: %w", err)
	}

	p.log.Debug("exported %d frames to %s (%d bytes)", kept, job.OutputPath, len(data))
	ch <- ProgressEvent{Percent: 100}
	return nil
}
