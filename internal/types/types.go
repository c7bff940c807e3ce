package types

import (
	"image"
	"math"
	"time"
)

// DefaultFPS is used when a source reports a non-positive frame rate.
const DefaultFPS = 25.0

type VideoInfo struct {
	Path        string  `json:"path"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// EffectiveFPS returns FPS, or DefaultFPS when the source did not report one.
func (v VideoInfo) EffectiveFPS() float64 {
	if v.FPS <= 0 || math.IsNaN(v.FPS) || math.IsInf(v.FPS, 0) {
		return DefaultFPS
	}
	return v.FPS
}

func (v VideoInfo) Duration() time.Duration {
	if v.TotalFrames <= 0 {
		return 0
	}
	return time.Duration(float64(v.TotalFrames) / v.EffectiveFPS() * float64(time.Second))
}

type Frame struct {
	Index int
	Image image.Image
}

// TimestampMs converts a zero-based frame index to milliseconds.
func TimestampMs(index int, fps float64) int64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return int64(math.Round(float64(index) / fps * 1000))
}

// Region is a rectangle in source-pixel coordinates.
type Region struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

type Sample struct {
	TimestampMs int64
	Raw         string
	Filtered    string
}

type SubtitleEntry struct {
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
	StatusErrored   Status = "errored"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusCancelled, StatusErrored:
		return true
	default:
		return false
	}
}

// Snapshot is a point-in-time copy of a job's observable state.
type Snapshot struct {
	JobID           string        `json:"job_id"`
	Status          Status        `json:"status"`
	Progress        int           `json:"progress"`
	FramesProcessed int           `json:"frames_processed"`
	TotalFrames     int           `json:"total_frames"`
	EntryCount      int           `json:"entry_count"`
	Err             error         `json:"-"`
	WriteErr        error         `json:"-"`
	OutputPaths     []string      `json:"output_paths,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Report summarizes a finished job for display and persistence.
type Report struct {
	Snapshot
	Video            string
	Region           *Region
	SampleIntervalMs int
	MinDurationMs    int
	Model            string
	Endpoint         string
	Entries          []SubtitleEntry
}
