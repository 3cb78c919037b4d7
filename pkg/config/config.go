// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/vidgif/pkg/export"
	"gopkg.in/yaml.v3"
)

// SizePreset names a fixed output resolution.
type SizePreset string

// QualityPreset names a dithering quality level.
type QualityPreset string

const (
	SizeSmall  SizePreset = "small"  // 320x180
	SizeMedium SizePreset = "medium" // 480x270
	SizeLarge  SizePreset = "large"  // 640x360
	SizeXLarge SizePreset = "xlarge" // 960x540

	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// Config represents the full configuration for vidgif.
type Config struct {
	// Export
	FPS     int `yaml:"fps"`
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Quality int `yaml:"quality"`

	// Playback
	Volume       float64 `yaml:"volume"`
	SeekDelayMs  int     `yaml:"seek_delay_ms"`
	AudioEnabled bool    `yaml:"audio"`

	// External tools
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Export
		FPS:     10,
		Width:   480,
		Height:  270,
		Quality: 85,

		// Playback
		Volume:       1.0,
		SeekDelayMs:  120,
		AudioEnabled: true,
	}
}

// LoadFromFile loads configuration from a YAML file, overlaying the
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// SaveToFile persists the configuration as YAML, so the last-used
// export settings survive restarts.
func (c Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplySizePreset sets the output dimensions from a named preset.
func (c *Config) ApplySizePreset(p SizePreset) error {
	switch p {
	case SizeSmall:
		c.Width, c.Height = 320, 180
	case SizeMedium:
		c.Width, c.Height = 480, 270
	case SizeLarge:
		c.Width, c.Height = 640, 360
	case SizeXLarge:
		c.Width, c.Height = 960, 540
	default:
		return fmt.Errorf("unknown size preset: %s", p)
	}
	return nil
}

// ApplyQualityPreset sets the encoder quality from a named preset.
func (c *Config) ApplyQualityPreset(p QualityPreset) error {
	switch p {
	case QualityLow:
		c.Quality = 70
	case QualityMedium:
		c.Quality = 85
	case QualityHigh:
		c.Quality = 95
	default:
		return fmt.Errorf("unknown quality preset: %s", p)
	}
	return nil
}

// ToJob converts the export settings to a clip job for the given
// source, output path and time range.
func (c Config) ToJob(sourcePath, outputPath string, startSec, endSec float64) export.Job {
	return export.Job{
		SourcePath: sourcePath,
		OutputPath: outputPath,
		StartSec:   startSec,
		EndSec:     endSec,
		FPS:        c.FPS,
		Width:      c.Width,
		Height:     c.Height,
		Quality:    c.Quality,
	}
}
