package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.FPS != 10 {
		t.Errorf("FPS = %d, want 10", cfg.FPS)
	}
	if cfg.Width != 480 || cfg.Height != 270 {
		t.Errorf("size = %dx%d, want 480x270", cfg.Width, cfg.Height)
	}
	if cfg.Quality != 85 {
		t.Errorf("Quality = %d, want 85", cfg.Quality)
	}
	if !cfg.AudioEnabled {
		t.Error("AudioEnabled = false, want true")
	}
}

func TestLoadFromFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidgif.yaml")
	content := "fps: 15\nwidth: 640\nheight: 360\naudio: false\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.FPS != 15 {
		t.Errorf("FPS = %d, want 15", cfg.FPS)
	}
	if cfg.Width != 640 || cfg.Height != 360 {
		t.Errorf("size = %dx%d, want 640x360", cfg.Width, cfg.Height)
	}
	if cfg.AudioEnabled {
		t.Error("AudioEnabled = true, want false")
	}
	// Fields absent from the file keep their defaults.
	if cfg.Quality != 85 {
		t.Errorf("Quality = %d, want default 85", cfg.Quality)
	}
	if cfg.SeekDelayMs != 120 {
		t.Errorf("SeekDelayMs = %d, want default 120", cfg.SeekDelayMs)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings", "vidgif.yaml")

	cfg := Defaults()
	cfg.FPS = 20
	cfg.Quality = 95
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.FPS != 20 || loaded.Quality != 95 {
		t.Errorf("round trip lost settings: fps=%d quality=%d", loaded.FPS, loaded.Quality)
	}
}

func TestLoadFromFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if cfg.FPS != 10 {
		t.Errorf("FPS = %d, want default 10", cfg.FPS)
	}
}

func TestSizePresets(t *testing.T) {
	tests := []struct {
		preset SizePreset
		w, h   int
	}{
		{SizeSmall, 320, 180},
		{SizeMedium, 480, 270},
		{SizeLarge, 640, 360},
		{SizeXLarge, 960, 540},
	}

	for _, tt := range tests {
		cfg := Defaults()
		if err := cfg.ApplySizePreset(tt.preset); err != nil {
			t.Errorf("ApplySizePreset(%s): %v", tt.preset, err)
			continue
		}
		if cfg.Width != tt.w || cfg.Height != tt.h {
			t.Errorf("%s: size = %dx%d, want %dx%d", tt.preset, cfg.Width, cfg.Height, tt.w, tt.h)
		}
	}

	cfg := Defaults()
	if err := cfg.ApplySizePreset("huge"); err == nil {
		t.Error("expected error for unknown size preset")
	}
}

func TestQualityPresets(t *testing.T) {
	tests := []struct {
		preset QualityPreset
		want   int
	}{
		{QualityLow, 70},
		{QualityMedium, 85},
		{QualityHigh, 95},
	}

	for _, tt := range tests {
		cfg := Defaults()
		if err := cfg.ApplyQualityPreset(tt.preset); err != nil {
			t.Errorf("ApplyQualityPreset(%s): %v", tt.preset, err)
			continue
		}
		if cfg.Quality != tt.want {
			t.Errorf("%s: Quality = %d, want %d", tt.preset, cfg.Quality, tt.want)
		}
	}

	cfg := Defaults()
	if err := cfg.ApplyQualityPreset("ultra"); err == nil {
		t.Error("expected error for unknown quality preset")
	}
}

func TestToJob(t *testing.T) {
	cfg := Defaults()
	job := cfg.ToJob("/in/clip.mp4", "/out/clip.gif", 2, 5)

	if job.SourcePath != "/in/clip.mp4" || job.OutputPath != "/out/clip.gif" {
		t.Errorf("paths = %s, %s", job.SourcePath, job.OutputPath)
	}
	if job.StartSec != 2 || job.EndSec != 5 {
		t.Errorf("range = %v-%v, want 2-5", job.StartSec, job.EndSec)
	}
	if job.FPS != cfg.FPS || job.Width != cfg.Width || job.Quality != cfg.Quality {
		t.Error("job does not carry the export settings")
	}
	if err := job.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
