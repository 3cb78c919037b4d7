package ffmpegdec

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/user/vidgif/pkg/ports"
)

// probeWithFFprobe extracts stream metadata by running ffprobe against
// the first video stream.
func probeWithFFprobe(path string) (ports.MediaInfo, error) {
	ffprobePath, err := FindFFprobe()
	if err != nil {
		return ports.MediaInfo{}, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames,duration",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	info, err := parseProbeOutput(string(out))
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// parseProbeOutput parses ffprobe key=value output into MediaInfo.
// Missing frame counts are derived from duration and frame rate.
func parseProbeOutput(out string) (ports.MediaInfo, error) {
	var info ports.MediaInfo
	var durationSec float64

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, "=")
		if !found || value == "N/A" || value == "" {
			continue
		}
		switch key {
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "r_frame_rate":
			info.FPS = parseRational(value)
		case "nb_frames":
			info.TotalFrames, _ = strconv.ParseInt(value, 10, 64)
		case "duration":
			// The stream duration and the container duration both come
			// through here; either is good enough.
			if d, err := strconv.ParseFloat(value, 64); err == nil && d > 0 {
				durationSec = d
			}
		}
	}

	if info.Width <= 0 || info.Height <= 0 {
		return info, fmt.Errorf("no video stream dimensions in probe output")
	}
	if info.TotalFrames <= 0 && durationSec > 0 && info.FPS > 0 {
		info.TotalFrames = int64(durationSec * info.FPS)
	}
	return info, nil
}

// parseRational parses an ffprobe rational like "30000/1001" or a plain
// number. Returns 0 when the value is unusable.
func parseRational(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
