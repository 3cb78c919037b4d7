// Package mp4probe extracts stream metadata from MP4 containers by
// parsing the moov box directly, avoiding an external probe process for
// the common case.
package mp4probe

import (
	"errors"
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/vidgif/pkg/ports"
)

// ErrNoVideoTrack is returned when the container has no video track.
var ErrNoVideoTrack = errors.New("no video track found")

// ErrFragmented is returned for fragmented MP4s, which carry their
// sample tables in fragments; callers fall back to ffprobe for those.
var ErrFragmented = errors.New("fragmented mp4 not supported")

// Probe parses the file's moov box and returns the video stream
// metadata.
func Probe(path string) (ports.MediaInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("decode mp4 %s: %w", path, err)
	}
	if mp4File.IsFragmented() || mp4File.Moov == nil {
		return ports.MediaInfo{}, ErrFragmented
	}

	trak := findVideoTrack(mp4File.Moov)
	if trak == nil {
		return ports.MediaInfo{}, ErrNoVideoTrack
	}

	info, err := trackInfo(trak)
	if err != nil {
		return ports.MediaInfo{}, err
	}
	info.Path = path
	return info, nil
}

func findVideoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

// trackInfo derives MediaInfo from a progressive video track: frame
// count from the time-to-sample table, frame rate from count over
// duration, dimensions from the track header.
func trackInfo(trak *mp4.TrakBox) (ports.MediaInfo, error) {
	var info ports.MediaInfo

	if trak.Mdia == nil || trak.Mdia.Mdhd == nil {
		return info, fmt.Errorf("video track has no media header")
	}
	mdhd := trak.Mdia.Mdhd

	var sampleCount int64
	if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stts != nil {
		for _, c := range trak.Mdia.Minf.Stbl.Stts.SampleCount {
			sampleCount += int64(c)
		}
	}
	if sampleCount == 0 {
		return info, fmt.Errorf("video track has an empty sample table")
	}

	info.TotalFrames = sampleCount
	info.FPS = deriveFPS(sampleCount, mdhd.Duration, mdhd.Timescale)

	if trak.Tkhd != nil {
		// Track header dimensions are 16.16 fixed point.
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}
	if info.Width == 0 || info.Height == 0 {
		w, h := sampleEntryDimensions(trak)
		info.Width, info.Height = w, h
	}
	if info.Width == 0 || info.Height == 0 {
		return info, fmt.Errorf("video track has no dimensions")
	}
	return info, nil
}

// deriveFPS computes the average frame rate from the sample count and
// the media duration in timescale units.
func deriveFPS(sampleCount int64, duration uint64, timescale uint32) float64 {
	if duration == 0 || timescale == 0 {
		return 0
	}
	durationSec := float64(duration) / float64(timescale)
	return float64(sampleCount) / durationSec
}

// sampleEntryDimensions reads the coded size from the sample
// description when the track header carries none.
func sampleEntryDimensions(trak *mp4.TrakBox) (int, int) {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil ||
		trak.Mdia.Minf.Stbl.Stsd == nil {
		return 0, 0
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			return int(vse.Width), int(vse.Height)
		}
	}
	return 0, 0
}
