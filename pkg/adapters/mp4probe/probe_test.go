package mp4probe

import (
	"math"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

func TestDeriveFPS(t *testing.T) {
	tests := []struct {
		name      string
		samples   int64
		duration  uint64
		timescale uint32
		want      float64
	}{
		{"30fps in 90k timescale", 300, 900000, 90000, 30},
		{"NTSC rate", 2997, 2997 * 1001, 30000, 29.97002997},
		{"zero duration", 300, 0, 90000, 0},
		{"zero timescale", 300, 900000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveFPS(tt.samples, tt.duration, tt.timescale)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("deriveFPS = %v, want %v", got, tt.want)
			}
		})
	}
}

func testTrack(samples uint32, duration uint64, timescale uint32, w, h uint16) *mp4.TrakBox {
	return &mp4.TrakBox{
		Tkhd: &mp4.TkhdBox{
			Width:  mp4.Fixed32(uint32(w) << 16),
			Height: mp4.Fixed32(uint32(h) << 16),
		},
		Mdia: &mp4.MdiaBox{
			Mdhd: &mp4.MdhdBox{Timescale: timescale, Duration: duration},
			Hdlr: &mp4.HdlrBox{HandlerType: "vide"},
			Minf: &mp4.MinfBox{
				Stbl: &mp4.StblBox{
					Stts: &mp4.SttsBox{
						SampleCount:     []uint32{samples},
						SampleTimeDelta: []uint32{timescale / 30},
					},
				},
			},
		},
	}
}

func TestTrackInfo(t *testing.T) {
	trak := testTrack(450, 1350000, 90000, 1280, 720)

	info, err := trackInfo(trak)
	if err != nil {
		t.Fatalf("trackInfo: %v", err)
	}
	if info.TotalFrames != 450 {
		t.Errorf("frames = %d, want 450", info.TotalFrames)
	}
	if math.Abs(info.FPS-30) > 0.001 {
		t.Errorf("fps = %v, want 30", info.FPS)
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", info.Width, info.Height)
	}
}

func TestTrackInfoEmptySampleTable(t *testing.T) {
	trak := testTrack(450, 1350000, 90000, 1280, 720)
	trak.Mdia.Minf.Stbl.Stts.SampleCount = nil

	if _, err := trackInfo(trak); err == nil {
		t.Error("empty sample table accepted")
	}
}

func TestFindVideoTrackSkipsAudio(t *testing.T) {
	moov := &mp4.MoovBox{}
	audio := &mp4.TrakBox{Mdia: &mp4.MdiaBox{Hdlr: &mp4.HdlrBox{HandlerType: "soun"}}}
	video := testTrack(10, 90000, 90000, 64, 36)
	moov.Traks = append(moov.Traks, audio, video)

	if got := findVideoTrack(moov); got != video {
		t.Error("video track not found behind the audio track")
	}
}
