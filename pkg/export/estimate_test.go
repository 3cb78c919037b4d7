package export

import (
	"strings"
	"testing"
)

func TestEstimateSizeBytes(t *testing.T) {
	job := Job{StartSec: 0, EndSec: 10, FPS: 10, Width: 480, Height: 270}
	// 100 frames at 480*270*3/100 bytes each.
	want := int64(100 * (480 * 270 * 3 / 100))
	if got := EstimateSizeBytes(job); got != want {
		t.Errorf("estimate = %d, want %d", got, want)
	}
}

func TestEstimateGrowsWithEachParameter(t *testing.T) {
	base := Job{StartSec: 0, EndSec: 5, FPS: 10, Width: 480, Height: 270}

	longer := base
	longer.EndSec = 10
	if EstimateSizeBytes(longer) <= EstimateSizeBytes(base) {
		t.Error("estimate did not grow with duration")
	}

	faster := base
	faster.FPS = 20
	if EstimateSizeBytes(faster) <= EstimateSizeBytes(base) {
		t.Error("estimate did not grow with fps")
	}

	bigger := base
	bigger.Width, bigger.Height = 960, 540
	if EstimateSizeBytes(bigger) <= EstimateSizeBytes(base) {
		t.Error("estimate did not grow with frame size")
	}
}

func TestClassifyEstimate(t *testing.T) {
	tests := []struct {
		bytes int64
		want  SizeBand
	}{
		{1 << 20, SizeSmall},
		{9 << 20, SizeSmall},
		{11 << 20, SizeMedium},
		{49 << 20, SizeMedium},
		{51 << 20, SizeLarge},
	}
	for _, tt := range tests {
		if got := ClassifyEstimate(tt.bytes); got != tt.want {
			t.Errorf("ClassifyEstimate(%d) = %v, want %v", tt.bytes, got, tt.want)
		}
	}
}

func TestDurationWarning(t *testing.T) {
	if w := DurationWarning(10); w != "" {
		t.Errorf("unexpected warning for short clip: %q", w)
	}
	if w := DurationWarning(20); !strings.Contains(w, "15 seconds") {
		t.Errorf("missing soft warning: %q", w)
	}
	if w := DurationWarning(45); !strings.Contains(w, "30 seconds") {
		t.Errorf("missing hard warning: %q", w)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestSuggestedName(t *testing.T) {
	if got := SuggestedName(2.4, 15.9); got != "export_2s-15s.gif" {
		t.Errorf("SuggestedName = %q", got)
	}
}

func TestJobValidate(t *testing.T) {
	ok := testJob()
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}

	bad := ok
	bad.EndSec = bad.StartSec
	if err := bad.Validate(); err == nil {
		t.Error("empty range accepted")
	}

	bad = ok
	bad.FPS = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero fps accepted")
	}

	bad = ok
	bad.Width = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero width accepted")
	}
}
