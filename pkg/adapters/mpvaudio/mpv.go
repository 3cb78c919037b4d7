// Package mpvaudio implements the audio output port by driving a
// headless mpv process over its JSON-IPC socket. mpv handles codec
// support, clocking and the actual audio device; this adapter only
// translates transport commands and watches for end-of-file.
package mpvaudio

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/user/vidgif/pkg/ports"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	eventReadDeadline = 5 * time.Second
)

// ErrMPVNotFound is returned when no mpv binary exists on the system.
var ErrMPVNotFound = errors.New("mpv not found")

// Output implements ports.AudioOutput on top of an mpv child process.
type Output struct {
	log ports.Logger

	mu         sync.Mutex
	socketPath string
	cmd        *exec.Cmd
	running    bool
	closed     bool

	events    chan ports.AudioEvent
	stopCh    chan struct{}
	eventConn net.Conn
}

// New creates an mpv-backed audio output. The process is spawned
// lazily on the first Open.
func New(log ports.Logger) *Output {
	return &Output{
		log:    log.WithComponent("mpv"),
		events: make(chan ports.AudioEvent, 16),
		stopCh: make(chan struct{}),
	}
}

// IsAvailable checks if mpv is available on the system.
func IsAvailable() bool {
	_, err := findMPV()
	return err == nil
}

func findMPV() (string, error) {
	if envPath := os.Getenv("MPV_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: MPV_PATH %s not found", ErrMPVNotFound, envPath)
	}
	if path, err := exec.LookPath("mpv"); err == nil {
		return path, nil
	}
	return "", ErrMPVNotFound
}

// Open loads the file's audio track, paused at the start.
func (o *Output) Open(path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return errors.New("audio output closed")
	}
	if !o.running {
		if err := o.start(); err != nil {
			return err
		}
	}
	if _, err := sendCommand(o.socketPath, []interface{}{"loadfile", path, "replace"}); err != nil {
		return fmt.Errorf("load audio %s: %w", path, err)
	}
	if _, err := sendCommand(o.socketPath, []interface{}{"set_property", "pause", true}); err != nil {
		return fmt.Errorf("pause after load: %w", err)
	}
	o.log.Debug("audio loaded: %s", path)
	return nil
}

// Play resumes audio playback.
func (o *Output) Play() error {
	return o.setProperty("pause", false)
}

// Pause suspends audio playback.
func (o *Output) Pause() error {
	return o.setProperty("pause", true)
}

// Stop pauses and rewinds to the start.
func (o *Output) Stop() error {
	if err := o.setProperty("pause", true); err != nil {
		return err
	}
	return o.seekSec(0)
}

// SetPositionMs jumps to an absolute position.
func (o *Output) SetPositionMs(ms int64) error {
	return o.seekSec(float64(ms) / 1000)
}

// SetVolume sets the volume; mpv's native range is 0-100.
func (o *Output) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return o.setProperty("volume", v*100)
}

// Events returns the asynchronous notification channel.
func (o *Output) Events() <-chan ports.AudioEvent {
	return o.events
}

// Close shuts mpv down and releases the socket.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	close(o.stopCh)
	if o.eventConn != nil {
		o.eventConn.Close()
	}
	if o.running {
		// Ask nicely, then make sure.
		_, _ = sendCommand(o.socketPath, []interface{}{"quit"})
		if o.cmd != nil && o.cmd.Process != nil {
			_ = o.cmd.Process.Kill()
			_ = o.cmd.Wait()
		}
		_ = os.Remove(o.socketPath)
		o.running = false
	}
	// The events channel is left open; consumers observe shutdown
	// through their own lifecycle, never through channel close.
	return nil
}

// start spawns mpv idle and headless, waits for its IPC socket and
// arms the event listener. Callers hold o.mu.
func (o *Output) start() error {
	mpvPath, err := findMPV()
	if err != nil {
		return err
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	o.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("vidgif-%x.sock", randomBytes))

	cmd := exec.Command(mpvPath,
		"--no-video",
		"--no-terminal",
		"--idle=yes",
		"--pause",
		"--input-ipc-server="+o.socketPath,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	o.cmd = cmd

	if err := o.waitForSocket(); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return err
	}

	// Subscribe to end-of-file notifications before anything plays.
	if _, err := sendCommand(o.socketPath, []interface{}{"observe_property", 1, "eof-reached"}); err != nil {
		return fmt.Errorf("observe eof-reached: %w", err)
	}

	conn, err := net.Dial("unix", o.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	o.eventConn = conn
	o.running = true
	go o.readLoop(conn)

	o.log.Debug("mpv started on %s", o.socketPath)
	return nil
}

// waitForSocket polls until mpv creates its IPC socket.
func (o *Output) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		if conn, err := net.Dial("unix", o.socketPath); err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(socketWaitDelay)
	}
	return fmt.Errorf("mpv ipc socket %s never appeared", o.socketPath)
}

// readLoop reads newline-delimited JSON events from the persistent
// connection and forwards the interesting ones.
func (o *Output) readLoop(conn net.Conn) {
	buf := make([]byte, readBufSize)
	var remainder []byte

	for {
		select {
		case <-o.stopCh:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(eventReadDeadline)); err != nil {
			return
		}
		n, err := conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			select {
			case <-o.stopCh:
			default:
				o.emit(ports.AudioEvent{Kind: ports.AudioFailure, Err: fmt.Errorf("mpv event stream: %w", err)})
			}
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil
		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}
			o.processEvent(line)
		}
	}
}

// processEvent parses and dispatches a single mpv event JSON line.
func (o *Output) processEvent(line string) {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}
	eventType, _ := event["event"].(string)
	switch eventType {
	case "property-change":
		name, _ := event["name"].(string)
		if name == "eof-reached" {
			if reached, _ := event["data"].(bool); reached {
				o.emit(ports.AudioEvent{Kind: ports.AudioEndOfMedia})
			}
		}
	case "end-file":
		if reason, _ := event["reason"].(string); reason == "error" {
			o.emit(ports.AudioEvent{Kind: ports.AudioFailure, Err: errors.New("mpv reported a playback error")})
		}
	}
}

func (o *Output) emit(ev ports.AudioEvent) {
	select {
	case o.events <- ev:
	case <-o.stopCh:
	}
}

func (o *Output) setProperty(name string, value interface{}) error {
	o.mu.Lock()
	socket := o.socketPath
	running := o.running
	o.mu.Unlock()
	if !running {
		return errors.New("mpv not running")
	}
	if _, err := sendCommand(socket, []interface{}{"set_property", name, value}); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func (o *Output) seekSec(sec float64) error {
	o.mu.Lock()
	socket := o.socketPath
	running := o.running
	o.mu.Unlock()
	if !running {
		return errors.New("mpv not running")
	}
	if _, err := sendCommand(socket, []interface{}{"seek", sec, "absolute"}); err != nil {
		return fmt.Errorf("seek to %.2fs: %w", sec, err)
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

var _ ports.AudioOutput = (*Output)(nil)
