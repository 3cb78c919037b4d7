package ffmpegdec

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var (
	customFFmpegPath  string
	customFFprobePath string
)

// SetFFmpegPath overrides ffmpeg binary discovery with an explicit path.
// Pass an empty string to restore automatic discovery.
func SetFFmpegPath(path string) {
	customFFmpegPath = path
}

// SetFFprobePath overrides ffprobe binary discovery with an explicit
// path. Pass an empty string to restore automatic discovery.
func SetFFprobePath(path string) {
	customFFprobePath = path
}

// IsFFmpegAvailable checks if ffmpeg is available on the system.
func IsFFmpegAvailable() bool {
	_, err := FindFFmpeg()
	return err == nil
}

// FindFFmpeg searches for ffmpeg in PATH and common locations.
// Priority: 1) SetFFmpegPath, 2) FFMPEG_PATH env, 3) PATH, 4) common locations
func FindFFmpeg() (string, error) {
	return findBinary("ffmpeg", customFFmpegPath, os.Getenv("FFMPEG_PATH"), ErrFFmpegNotFound)
}

// FindFFprobe searches for ffprobe the same way FindFFmpeg does, with
// the FFPROBE_PATH environment variable.
func FindFFprobe() (string, error) {
	return findBinary("ffprobe", customFFprobePath, os.Getenv("FFPROBE_PATH"), ErrFFprobeNotFound)
}

func findBinary(name, customPath, envPath string, notFound error) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", notFound, customPath)
	}

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s not found", notFound, envPath)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName = name + ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	// Check common locations
	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\ffmpeg\bin\` + execName,
			`C:\Program Files\ffmpeg\bin\` + execName,
			`C:\Program Files (x86)\ffmpeg\bin\` + execName,
		}
	case "darwin":
		commonPaths = []string{
			"/opt/homebrew/bin/" + name,
			"/usr/local/bin/" + name,
			"/usr/bin/" + name,
		}
	default:
		commonPaths = []string{
			"/usr/bin/" + name,
			"/usr/local/bin/" + name,
			"/opt/homebrew/bin/" + name,
			"/snap/bin/" + name,
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", notFound
}
