package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/subextract/internal/ports"
	"github.com/forPelevin/subextract/internal/types"
)

var ErrNoVideoStream = errors.New("ffmpeg: no decodable video stream")

type Adapter struct {
	ffmpeg  string
	ffprobe string
	fast    ports.Prober
}

// New returns an adapter using the given binaries. fast, when non-nil, is
// tried before ffprobe.
func New(ffmpegPath, ffprobePath string, fast ports.Prober) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, fast: fast}
}

// Open probes the video and returns a stream that decodes lazily.
func (a *Adapter) Open(ctx context.Context, path string) (ports.VideoStream, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	info, err := a.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, ErrNoVideoStream
	}
	return newStream(a.ffmpeg, info), nil
}

func (a *Adapter) Probe(ctx context.Context, path string) (types.VideoInfo, error) {
	if a.fast != nil {
		if info, err := a.fast.Probe(ctx, path); err == nil && info.Width > 0 && info.Height > 0 {
			return info, nil
		}
	}
	return a.probeFFprobe(ctx, path)
}

type ffprobeOutput struct {
	Streams []struct {
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		AvgFrameRate  string `json:"avg_frame_rate"`
		RFrameRate    string `json:"r_frame_rate"`
		NbFrames      string `json:"nb_frames"`
		NbReadPackets string `json:"nb_read_packets"`
		Duration      string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (a *Adapter) probeFFprobe(ctx context.Context, path string) (types.VideoInfo, error) {
	res, err := a.runProbe(ctx, path,
		"-show_entries", "stream=width,height,avg_frame_rate,r_frame_rate,nb_frames,duration:format=duration",
	)
	if err != nil {
		return types.VideoInfo{}, err
	}
	if len(res.Streams) == 0 {
		return types.VideoInfo{}, ErrNoVideoStream
	}
	s := res.Streams[0]

	info := types.VideoInfo{Path: path, Width: s.Width, Height: s.Height}
	info.FPS = parseRate(s.AvgFrameRate)
	if info.FPS <= 0 {
		info.FPS = parseRate(s.RFrameRate)
	}

	if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
		info.TotalFrames = n
		return info, nil
	}

	dur := parseFloat(s.Duration)
	if dur <= 0 {
		dur = parseFloat(res.Format.Duration)
	}
	if dur > 0 && info.FPS > 0 {
		info.TotalFrames = int(math.Round(dur * info.FPS))
		return info, nil
	}

	// Container metadata is missing; count packets.
	counted, err := a.runProbe(ctx, path, "-count_packets", "-show_entries", "stream=nb_read_packets")
	if err == nil && len(counted.Streams) > 0 {
		if n, err := strconv.Atoi(counted.Streams[0].NbReadPackets); err == nil {
			info.TotalFrames = n
		}
	}
	return info, nil
}

func (a *Adapter) runProbe(ctx context.Context, path string, args ...string) (ffprobeOutput, error) {
	full := append([]string{"-v", "error", "-select_streams", "v:0"}, args...)
	full = append(full, "-of", "json", path)
	cmd := exec.CommandContext(ctx, a.ffprobe, full...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return ffprobeOutput{}, fmt.Errorf("ffprobe: %w\n%s", err, stderr.String())
	}
	var res ffprobeOutput
	if err := json.Unmarshal(out, &res); err != nil {
		return ffprobeOutput{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return res, nil
}

func parseRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "0/0" {
		return 0
	}
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
