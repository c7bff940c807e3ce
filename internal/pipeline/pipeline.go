package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/subextract/internal/ports"
	"github.com/forPelevin/subextract/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/subextract/internal/ports/adapters/mp4probe"
	"github.com/forPelevin/subextract/internal/ports/adapters/openai"
	"github.com/forPelevin/subextract/internal/ports/adapters/stub"
	"github.com/forPelevin/subextract/internal/types"
	"github.com/forPelevin/subextract/internal/usecase"
)

const (
	EngineOpenAI = "openai"
	EngineDummy  = "dummy"

	defaultPollInterval = 200 * time.Millisecond
)

type Config struct {
	Video  string
	Output string
	// ReportPath, when set, receives the run report as JSON.
	ReportPath string

	Region           *types.Region
	SampleIntervalMs int
	MinDurationMs    int
	MaxImageWidth    int

	Engine       string
	Endpoint     string
	APIPath      string
	APIKey       string
	Model        string
	Prompt       string
	SystemPrompt string
	Timeout      time.Duration
	AllowedHosts []string

	FFmpegPath  string
	FFprobePath string

	Logger   ports.Logger
	Recorder ports.JobRecorder

	// OnProgress is called with a fresh snapshot every PollInterval and once
	// more when the job ends.
	OnProgress   func(types.Snapshot)
	PollInterval time.Duration

	// Frames and Recognizer replace the adapters built from the fields above.
	Frames     ports.FrameSource
	Recognizer ports.Recognizer
}

func (c Config) Validate() error {
	if c.Video == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.Video); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.SampleIntervalMs <= 0 {
		return fmt.Errorf("sample interval must be > 0")
	}
	if c.MinDurationMs < 0 {
		return fmt.Errorf("min duration must be >= 0")
	}
	switch c.Engine {
	case EngineDummy:
		return nil
	case EngineOpenAI, "":
		return openai.ValidateBaseURL(c.Endpoint, c.AllowedHosts)
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
}

// Frames returns the ffmpeg frame source with the MP4 fast-path prober.
func Frames(ffmpegPath, ffprobePath string) *ffmpeg.Adapter {
	return ffmpeg.New(ffmpegPath, ffprobePath, mp4probe.New())
}

func (c Config) recognizer() ports.Recognizer {
	if c.Recognizer != nil {
		return c.Recognizer
	}
	if c.Engine == EngineDummy {
		return stub.Empty{}
	}
	return openai.New(openai.Options{
		Endpoint:     c.Endpoint,
		APIPath:      c.APIPath,
		APIKey:       c.APIKey,
		Model:        c.Model,
		Prompt:       c.Prompt,
		SystemPrompt: c.SystemPrompt,
		Timeout:      c.Timeout,
	})
}

// Run extracts subtitles from cfg.Video and blocks until the job ends.
// Cancelling ctx cancels the job; entries gathered so far are still written.
func Run(ctx context.Context, cfg Config) (types.Report, error) {
	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}

	frames := cfg.Frames
	if frames == nil {
		frames = Frames(cfg.FFmpegPath, cfg.FFprobePath)
	}
	rec := cfg.recognizer()

	model, endpoint := cfg.Model, cfg.Endpoint
	if a, ok := rec.(*openai.Adapter); ok {
		model, endpoint = a.Model(), a.URL()
		log.Info("Recognizer: %s (%s)", model, endpoint)
	} else if cfg.Engine == EngineDummy {
		model, endpoint = EngineDummy, ""
	}

	uc := usecase.New(usecase.Deps{
		Frames:     frames,
		Recognizer: rec,
		Logger:     log,
		Recorder:   cfg.Recorder,
	})

	out := cfg.Output
	if out == "" {
		out = usecase.DefaultOutputBase(cfg.Video)
	}
	log.Info("Output: %s", out)

	job, err := uc.Start(ctx, usecase.Input{
		VideoPath:        cfg.Video,
		Region:           cfg.Region,
		SampleIntervalMs: cfg.SampleIntervalMs,
		MinDurationMs:    cfg.MinDurationMs,
		OutputBase:       out,
		MaxImageWidth:    cfg.MaxImageWidth,
		Model:            model,
		Endpoint:         endpoint,
	})
	if err != nil {
		if job != nil {
			return job.Report(), err
		}
		return types.Report{}, err
	}

	watch(job, cfg.OnProgress, cfg.PollInterval)

	rep := job.Report()
	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, rep); err != nil {
			return rep, err
		}
		log.Info("Report written: %s", cfg.ReportPath)
	}
	return rep, rep.Err
}

func watch(job *usecase.Job, onProgress func(types.Snapshot), every time.Duration) {
	if onProgress == nil {
		<-job.Done()
		return
	}
	if every <= 0 {
		every = defaultPollInterval
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-job.Done():
			onProgress(job.Poll())
			return
		case <-t.C:
			onProgress(job.Poll())
		}
	}
}

type reportJSON struct {
	types.Snapshot
	Error      string                `json:"error,omitempty"`
	WriteError string                `json:"write_error,omitempty"`
	Video      string                `json:"video"`
	Region     *types.Region         `json:"region,omitempty"`
	SampleMs   int                   `json:"sample_interval_ms"`
	MinDurMs   int                   `json:"min_duration_ms"`
	Model      string                `json:"model"`
	Endpoint   string                `json:"endpoint,omitempty"`
	Entries    []types.SubtitleEntry `json:"entries"`
}

func writeReport(path string, r types.Report) error {
	out := reportJSON{
		Snapshot: r.Snapshot,
		Video:    r.Video,
		Region:   r.Region,
		SampleMs: r.SampleIntervalMs,
		MinDurMs: r.MinDurationMs,
		Model:    r.Model,
		Endpoint: r.Endpoint,
		Entries:  r.Entries,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	if r.WriteErr != nil {
		out.WriteError = r.WriteErr.Error()
	}
	if out.Entries == nil {
		out.Entries = []types.SubtitleEntry{}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                {}
func (nopLogger) Info(string, ...any)                 {}
func (nopLogger) Warn(string, ...any)                 {}
func (nopLogger) Error(string, ...any)                {}
func (n nopLogger) WithComponent(string) ports.Logger { return n }

// ensure adapters implement ports
var _ ports.FrameSource = (*ffmpeg.Adapter)(nil)
var _ ports.Prober = (*ffmpeg.Adapter)(nil)
var _ ports.Prober = (*mp4probe.Prober)(nil)
var _ ports.Recognizer = (*openai.Adapter)(nil)
var _ ports.Recognizer = stub.Empty{}
