// Package usecase runs extraction jobs: sampling frames, recognizing text and
// turning the observations into subtitle entries.
package usecase

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/subextract/internal/metrics"
	"github.com/forPelevin/subextract/internal/ports"
	"github.com/forPelevin/subextract/internal/types"
)

type Deps struct {
	Frames     ports.FrameSource
	Recognizer ports.Recognizer
	Logger     ports.Logger
	// Recorder is optional.
	Recorder ports.JobRecorder
}

type Input struct {
	VideoPath        string
	Region           *types.Region
	SampleIntervalMs int
	MinDurationMs    int
	// OutputBase is the path of the caption file without extension. Empty
	// means next to the video.
	OutputBase    string
	MaxImageWidth int

	// Model and Endpoint only annotate the report.
	Model    string
	Endpoint string

	// OnSample, if set, sees every recognized sample from the worker goroutine.
	OnSample func(types.Sample)
}

type Result struct {
	Report types.Report
}

// Controller starts extraction jobs, one at a time.
type Controller struct {
	d   Deps
	log ports.Logger

	mu      sync.Mutex
	current *Job
}

func New(d Deps) *Controller {
	log := d.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Controller{d: d, log: log.WithComponent("extract")}
}

// Start opens the video and launches the worker. On open failure the returned
// job is already errored and the error is a *VideoOpenError.
func (c *Controller) Start(ctx context.Context, in Input) (*Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && !c.current.Poll().Status.Terminal() {
		return nil, ErrAlreadyStarted
	}

	j := newJob(in, c.d.Recorder, c.log)
	c.current = j

	stream, err := c.d.Frames.Open(ctx, in.VideoPath)
	if err != nil {
		openErr := &VideoOpenError{Path: in.VideoPath, Err: err}
		c.log.Error("Failed to open video %s: %v", in.VideoPath, err)
		j.fail(ctx, openErr)
		return j, openErr
	}

	info := stream.Info()
	j.mu.Lock()
	j.video = info
	j.snap.Status = types.StatusRunning
	j.snap.TotalFrames = info.TotalFrames
	j.mu.Unlock()

	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	metrics.ActiveJobs.Inc()
	c.log.Info("Started job %s on %s (%.3f fps, %d frames)", j.id, in.VideoPath, info.EffectiveFPS(), info.TotalFrames)

	go j.run(jobCtx, stream, c.d.Recognizer)
	return j, nil
}

// Cancel cancels the current job, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	j := c.current
	c.mu.Unlock()
	if j != nil {
		j.Cancel()
	}
}

// Current returns the most recently started job, or nil.
func (c *Controller) Current() *Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Run starts a job and waits for it to finish.
func (c *Controller) Run(ctx context.Context, in Input) (Result, error) {
	j, err := c.Start(ctx, in)
	if err != nil {
		if j != nil {
			return Result{Report: j.Report()}, err
		}
		return Result{}, err
	}
	snap, err := j.Wait(ctx)
	if err != nil {
		j.Cancel()
		<-j.Done()
		return Result{Report: j.Report()}, err
	}
	return Result{Report: j.Report()}, snap.Err
}

// Step returns how many source frames separate two samples.
func Step(fps float64, sampleIntervalMs int) int {
	if fps <= 0 {
		fps = types.DefaultFPS
	}
	step := int(math.Round(fps * float64(sampleIntervalMs) / 1000))
	if step < 1 {
		return 1
	}
	return step
}

// Progress is the percentage of frames covered once frame index has been
// processed. Unknown totals report 0.
func Progress(index, totalFrames int) int {
	if totalFrames <= 0 {
		return 0
	}
	p := int(math.Round(float64(index+1) / float64(totalFrames) * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// DefaultOutputBase places output next to the video with the same base name.
func DefaultOutputBase(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
}

func newJob(in Input, rec ports.JobRecorder, log ports.Logger) *Job {
	id := uuid.New().String()
	return &Job{
		id:   id,
		in:   in,
		rec:  rec,
		log:  log,
		done: make(chan struct{}),
		snap: types.Snapshot{
			JobID:     id,
			Status:    types.StatusIdle,
			StartedAt: time.Now(),
		},
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                {}
func (nopLogger) Info(string, ...any)                 {}
func (nopLogger) Warn(string, ...any)                 {}
func (nopLogger) Error(string, ...any)                {}
func (n nopLogger) WithComponent(string) ports.Logger { return n }
