// Package mp4probe reads frame rate, frame count and picture size from the
// moov box of progressive MP4 files.
package mp4probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/forPelevin/subextract/internal/types"
)

var (
	ErrNotMP4         = errors.New("mp4probe: not an mp4 container")
	ErrFragmented     = errors.New("mp4probe: fragmented mp4 is not supported")
	ErrNoVideoTrack   = errors.New("mp4probe: no video track found")
	ErrMissingTimings = errors.New("mp4probe: video track has no timing information")
)

var mp4Exts = map[string]struct{}{".mp4": {}, ".m4v": {}, ".mov": {}}

type Prober struct{}

func New() *Prober { return &Prober{} }

func (p *Prober) Probe(_ context.Context, path string) (types.VideoInfo, error) {
	if _, ok := mp4Exts[strings.ToLower(filepath.Ext(path))]; !ok {
		return types.VideoInfo{}, ErrNotMP4
	}
	f, err := os.Open(path)
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := ProbeReader(f)
	if err != nil {
		return types.VideoInfo{}, err
	}
	info.Path = path
	return info, nil
}

// ProbeReader parses the container without loading media data.
func ProbeReader(r io.ReadSeeker) (types.VideoInfo, error) {
	mp4File, err := mp4.DecodeFile(r, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("decode mp4: %w", err)
	}
	if mp4File.IsFragmented() {
		return types.VideoInfo{}, ErrFragmented
	}
	if mp4File.Moov == nil {
		return types.VideoInfo{}, ErrNoVideoTrack
	}
	for _, trak := range mp4File.Moov.Traks {
		if info, ok, err := videoTrackInfo(trak); ok || err != nil {
			return info, err
		}
	}
	return types.VideoInfo{}, ErrNoVideoTrack
}

func videoTrackInfo(trak *mp4.TrakBox) (types.VideoInfo, bool, error) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return types.VideoInfo{}, false, nil
	}
	mdhd := trak.Mdia.Mdhd
	if mdhd == nil || mdhd.Timescale == 0 || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return types.VideoInfo{}, true, ErrMissingTimings
	}
	stbl := trak.Mdia.Minf.Stbl

	var frames uint64
	var ticks uint64
	if stbl.Stts != nil {
		for i, n := range stbl.Stts.SampleCount {
			frames += uint64(n)
			ticks += uint64(n) * uint64(stbl.Stts.SampleTimeDelta[i])
		}
	}
	if frames == 0 && stbl.Stsz != nil {
		frames = uint64(stbl.Stsz.SampleNumber)
	}
	if ticks == 0 {
		ticks = mdhd.Duration
	}
	if frames == 0 || ticks == 0 {
		return types.VideoInfo{}, true, ErrMissingTimings
	}

	info := types.VideoInfo{
		FPS:         float64(frames) * float64(mdhd.Timescale) / float64(ticks),
		TotalFrames: int(frames),
	}
	info.Width, info.Height = codedSize(trak)
	return info, true, nil
}

// codedSize returns the decoded picture size from the sample entry. tkhd
// carries the display size, which differs for non-square pixels, so it is
// only a fallback.
func codedSize(trak *mp4.TrakBox) (int, int) {
	if stsd := trak.Mdia.Minf.Stbl.Stsd; stsd != nil {
		for _, child := range stsd.Children {
			if v, ok := child.(*mp4.VisualSampleEntryBox); ok && v.Width > 0 && v.Height > 0 {
				return int(v.Width), int(v.Height)
			}
		}
	}
	if trak.Tkhd != nil {
		return int(trak.Tkhd.Width >> 16), int(trak.Tkhd.Height >> 16)
	}
	return 0, 0
}
