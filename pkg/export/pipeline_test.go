package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/vidgif/pkg/adapters/logger"
	"github.com/user/vidgif/pkg/mocks"
	"github.com/user/vidgif/pkg/ports"
)

func testJob() Job {
	return Job{
		SourcePath: "clip.mp4",
		OutputPath: "/out/export_2s-5s.gif",
		StartSec:   2,
		EndSec:     5,
		FPS:        10,
		Width:      32,
		Height:     18,
		Quality:    85,
	}
}

func testPipeline(dec *mocks.FrameDecoder, enc *mocks.AnimationEncoder, fs *mocks.FileSystem) *Pipeline {
	return NewPipeline(Options{
		NewDecoder: func() ports.FrameDecoder { return dec },
		NewEncoder: func() ports.AnimationEncoder { return enc },
		FS:         fs,
	}, logger.NewNoop())
}

// drain consumes all progress events until the channel closes.
func drain(t *testing.T, ch <-chan ProgressEvent) []ProgressEvent {
	t.Helper()
	var got []ProgressEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatal("pipeline did not finish")
		}
	}
}

func final(events []ProgressEvent) ProgressEvent {
	if len(events) == 0 {
		return ProgressEvent{}
	}
	return events[len(events)-1]
}

func TestExportKeepsEveryStepThFrame(t *testing.T) {
	// 30fps source, 10fps target: step 3. The 2-5s clip covers source
	// frames [60, 150), so exactly 30 frames survive.
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 300, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	events := drain(t, testPipeline(dec, enc, fs).Run(context.Background(), testJob()))

	fin := final(events)
	if fin.Err != nil {
		t.Fatalf("export failed: %v", fin.Err)
	}
	if !fin.Done || fin.OutputPath != "/out/export_2s-5s.gif" {
		t.Fatalf("unexpected final event: %+v", fin)
	}
	got := enc.AppendedCount()
	if got != 30 {
		t.Errorf("appended %d frames, want exactly 30 for a 3s clip at 10fps", got)
	}
	if enc.BeginWidth != 32 || enc.BeginHeight != 18 {
		t.Errorf("encoder size %dx%d, want 32x18", enc.BeginWidth, enc.BeginHeight)
	}
	if enc.BeginDelay != 100 {
		t.Errorf("frame delay = %dms, want 100 for 10fps", enc.BeginDelay)
	}
	if _, ok := fs.GetFile("/out/export_2s-5s.gif"); !ok {
		t.Error("output file not written")
	}
	if _, ok := fs.GetFile("/out/export_2s-5s.gif.part"); ok {
		t.Error("temp file left behind")
	}
}

func TestExportFramesComeFromClipRange(t *testing.T) {
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 300, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	drain(t, testPipeline(dec, enc, fs).Run(context.Background(), testJob()))

	history := dec.SeekHistory()
	if len(history) == 0 || history[0] != 60 {
		t.Errorf("first decoder seek = %v, want clip start frame 60", history)
	}
}

func TestExportInvalidRangeFailsBeforeDecoding(t *testing.T) {
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 300}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	job := testJob()
	job.StartSec, job.EndSec = 5, 5

	events := drain(t, testPipeline(dec, enc, fs).Run(context.Background(), job))
	fin := final(events)
	if !errors.Is(fin.Err, ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", fin.Err)
	}
	if len(dec.OpenCalls) != 0 {
		t.Error("decoder opened for an invalid job")
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Error("files written for an invalid job")
	}
}

func TestExportEmptyRangeReportsNoFrames(t *testing.T) {
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 30}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	job := testJob() // clip starts at 2s, stream is only 1s long

	events := drain(t, testPipeline(dec, enc, fs).Run(context.Background(), job))
	if !errors.Is(final(events).Err, ErrNoFramesExtracted) {
		t.Fatalf("err = %v, want ErrNoFramesExtracted", final(events).Err)
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Error("files written for an empty clip")
	}
}

func TestExportCancelLeavesNoOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 30000, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	job := testJob()
	job.EndSec = 900 // long job so cancellation wins the race

	ch := testPipeline(dec, enc, fs).Run(ctx, job)
	// Wait for the first progress tick, then cancel mid-run.
	for ev := range ch {
		if ev.Percent > 0 || ev.Err != nil {
			cancel()
			break
		}
	}
	events := drain(t, ch)

	var done bool
	for _, ev := range events {
		if ev.Done {
			done = true
		}
	}
	if done {
		t.Error("cancelled export reported success")
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Error("cancelled export left files behind")
	}
	cancel()
}

func TestExportProgressIsMonotonic(t *testing.T) {
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 300, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	events := drain(t, testPipeline(dec, enc, fs).Run(context.Background(), testJob()))

	last := -1
	for _, ev := range events {
		if ev.Err != nil {
			t.Fatalf("export failed: %v", ev.Err)
		}
		if ev.Percent < last {
			t.Fatalf("progress went backwards: %d after %d", ev.Percent, last)
		}
		last = ev.Percent
	}
	if last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestExportNativeRateKeepsEveryFrame(t *testing.T) {
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 10, TotalFrames: 100, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	job := testJob()
	job.StartSec, job.EndSec = 0, 2 // source frames [0, 20) at 10fps
	job.FPS = 30                    // target above native: step stays 1

	drain(t, testPipeline(dec, enc, fs).Run(context.Background(), job))

	got := enc.AppendedCount()
	if got != 20 {
		t.Errorf("appended %d frames, want every source frame in [0s, 2s)", got)
	}
}

func TestExportExcludesEndBoundaryFrame(t *testing.T) {
	// A 1s clip at the source's native rate keeps frames [30, 60): the
	// frame that falls exactly on EndSec stays out of the output.
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 300, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	job := testJob()
	job.StartSec, job.EndSec = 1, 2
	job.FPS = 30

	events := drain(t, testPipeline(dec, enc, fs).Run(context.Background(), job))
	if fin := final(events); fin.Err != nil {
		t.Fatalf("export failed: %v", fin.Err)
	}
	if got := enc.AppendedCount(); got != 30 {
		t.Errorf("appended %d frames, want 30 (frame 60 excluded)", got)
	}
}

type failingDirect struct {
	calls int
}

func (f *failingDirect) EncodeClip(ctx context.Context, job Job) error {
	f.calls++
	return errors.New("palettegen blew up")
}

type succeedingDirect struct {
	fs *mocks.FileSystem
}

func (s *succeedingDirect) EncodeClip(ctx context.Context, job Job) error {
	return s.fs.WriteFile(job.OutputPath, []byte("GIF89a"))
}

func TestExportFallsBackWhenDirectPathFails(t *testing.T) {
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 300, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()
	direct := &failingDirect{}

	p := NewPipeline(Options{
		NewDecoder: func() ports.FrameDecoder { return dec },
		NewEncoder: func() ports.AnimationEncoder { return enc },
		Direct:     direct,
		FS:         fs,
	}, logger.NewNoop())

	events := drain(t, p.Run(context.Background(), testJob()))
	fin := final(events)
	if fin.Err != nil || !fin.Done {
		t.Fatalf("fallback export failed: %+v", fin)
	}
	if direct.calls != 1 {
		t.Errorf("direct path called %d times, want 1", direct.calls)
	}
	if enc.AppendedCount() == 0 {
		t.Error("fallback never reached the frame encoder")
	}
}

func TestExportUsesDirectPathWhenAvailable(t *testing.T) {
	dec := &mocks.FrameDecoder{Info: ports.MediaInfo{FPS: 30, TotalFrames: 300, Width: 64, Height: 36}}
	enc := &mocks.AnimationEncoder{}
	fs := mocks.NewFileSystem()

	p := NewPipeline(Options{
		NewDecoder: func() ports.FrameDecoder { return dec },
		NewEncoder: func() ports.AnimationEncoder { return enc },
		Direct:     &succeedingDirect{fs: fs},
		FS:         fs,
	}, logger.NewNoop())

	events := drain(t, p.Run(context.Background(), testJob()))
	if !final(events).Done {
		t.Fatalf("direct export failed: %+v", final(events))
	}
	if enc.BeginCalled {
		t.Error("frame encoder used although the direct path succeeded")
	}
}
