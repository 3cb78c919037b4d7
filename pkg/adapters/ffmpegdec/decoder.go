// Package ffmpegdec implements the frame decoder port on top of an
// external ffmpeg process. Frames stream over a pipe as raw RGB24;
// seeking restarts the process at the target timestamp, which keeps the
// decoder simple and stateless across seeks.
package ffmpegdec

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/vidgif/pkg/adapters/mp4probe"
	"github.com/user/vidgif/pkg/ports"
)

// Decoder implements ports.FrameDecoder using an ffmpeg child process.
type Decoder struct {
	mu        sync.Mutex
	info      ports.MediaInfo
	opened    bool
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	reader    *bufio.Reader
	frameBuf  []byte
	nextFrame int64
}

// New creates a decoder. Open must be called before any other method.
func New() *Decoder {
	return &Decoder{}
}

// Open probes the file and starts decoding at frame 0. MP4 containers
// are probed with a native box parser; everything else goes through
// ffprobe.
func (d *Decoder) Open(path string) (ports.MediaInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopProcess()
	d.opened = false

	if _, err := os.Stat(path); err != nil {
		return ports.MediaInfo{}, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := probeFile(path)
	if err != nil {
		return ports.MediaInfo{}, err
	}
	d.info = info
	d.frameBuf = make([]byte, info.Width*info.Height*3)

	if err := d.startProcess(0); err != nil {
		return ports.MediaInfo{}, err
	}
	d.opened = true
	return info, nil
}

// ReadNext delivers the next frame in sequence. A short read means the
// stream ended or the process died; both are reported as a clean end.
func (d *Decoder) ReadNext() (image.Image, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened || d.reader == nil {
		return nil, false
	}
	if _, err := io.ReadFull(d.reader, d.frameBuf); err != nil {
		return nil, false
	}
	img := rgb24ToRGBA(d.frameBuf, d.info.Width, d.info.Height)
	d.nextFrame++
	return img, true
}

// SeekToFrame repositions the stream. Seeking to the frame the decoder
// is already standing on costs nothing; anything else restarts ffmpeg
// at the target timestamp.
func (d *Decoder) SeekToFrame(frame int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return ErrNotOpen
	}
	frame = d.info.ClampFrame(frame)
	if frame == d.nextFrame {
		return nil
	}
	return d.startProcess(frame)
}

// Close kills the decode process. Safe to call repeatedly.
func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopProcess()
	d.opened = false
	return nil
}

// startProcess (re)spawns ffmpeg so that the next read returns the
// given frame. Callers hold d.mu.
func (d *Decoder) startProcess(frame int64) error {
	d.stopProcess()

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}

	fps := d.info.FPS
	if fps <= 0 {
		fps = ports.FallbackFPS
	}

	args := []string{"-v", "error"}
	if frame > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.6f", float64(frame)/fps))
	}
	args = append(args,
		"-i", d.info.Path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	cmd := exec.Command(ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	d.cmd = cmd
	d.stdout = stdout
	d.reader = bufio.NewReaderSize(stdout, len(d.frameBuf))
	d.nextFrame = frame
	return nil
}

// stopProcess kills the running ffmpeg, if any. Callers hold d.mu.
func (d *Decoder) stopProcess() {
	if d.cmd == nil {
		return
	}
	if d.stdout != nil {
		d.stdout.Close()
	}
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	_ = d.cmd.Wait()
	d.cmd = nil
	d.stdout = nil
	d.reader = nil
}

// Probe extracts container metadata without starting a decode.
func Probe(path string) (ports.MediaInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return ports.MediaInfo{}, err
	}
	return probeFile(path)
}

// probeFile extracts metadata, preferring the native MP4 parser and
// falling back to ffprobe for other containers or on parse failure.
func probeFile(path string) (ports.MediaInfo, error) {
	if isMP4Path(path) {
		if info, err := mp4probe.Probe(path); err == nil {
			return info, nil
		}
	}
	return probeWithFFprobe(path)
}

func isMP4Path(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".mp4", ".m4v", ".mov"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// rgb24ToRGBA expands packed RGB24 pixels into an RGBA image.
func rgb24ToRGBA(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4+0] = buf[i*3+0]
		img.Pix[i*4+1] = buf[i*3+1]
		img.Pix[i*4+2] = buf[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img
}

var _ ports.FrameDecoder = (*Decoder)(nil)
