package usecase

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/forPelevin/subextract/internal/domain/roi"
	"github.com/forPelevin/subextract/internal/domain/segmenter"
	"github.com/forPelevin/subextract/internal/domain/subtitles"
	"github.com/forPelevin/subextract/internal/domain/textfilter"
	"github.com/forPelevin/subextract/internal/metrics"
	"github.com/forPelevin/subextract/internal/ports"
	"github.com/forPelevin/subextract/internal/types"
)

const recordTimeout = 5 * time.Second

// Job is one extraction run. Its state is written only by the worker
// goroutine; Poll and friends return copies.
type Job struct {
	id  string
	in  Input
	rec ports.JobRecorder
	log ports.Logger

	mu      sync.RWMutex
	snap    types.Snapshot
	video   types.VideoInfo
	entries []types.SubtitleEntry

	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func (j *Job) ID() string { return j.id }

// Cancel asks the worker to stop. In-flight recognition is aborted. Entries
// gathered so far are flushed and written. Calling Cancel on a finished job
// has no effect.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
	if j.cancel != nil {
		j.cancel()
	}
}

// Poll returns a snapshot of the job state.
func (j *Job) Poll() types.Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	s := j.snap
	s.OutputPaths = append([]string(nil), j.snap.OutputPaths...)
	if !s.Status.Terminal() && !s.StartedAt.IsZero() {
		s.Elapsed = time.Since(s.StartedAt)
	}
	return s
}

// Done is closed once the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) (types.Snapshot, error) {
	select {
	case <-j.done:
		return j.Poll(), nil
	case <-ctx.Done():
		return j.Poll(), ctx.Err()
	}
}

func (j *Job) Entries() []types.SubtitleEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]types.SubtitleEntry(nil), j.entries...)
}

func (j *Job) Report() types.Report {
	snap := j.Poll()
	j.mu.RLock()
	defer j.mu.RUnlock()
	r := types.Report{
		Snapshot:         snap,
		Video:            j.in.VideoPath,
		SampleIntervalMs: j.in.SampleIntervalMs,
		MinDurationMs:    j.in.MinDurationMs,
		Model:            j.in.Model,
		Endpoint:         j.in.Endpoint,
		Entries:          append([]types.SubtitleEntry(nil), j.entries...),
	}
	if j.in.Region != nil {
		reg := *j.in.Region
		if j.video.Width > 0 && j.video.Height > 0 {
			reg = roi.Clamp(reg, j.video.Width, j.video.Height)
		}
		r.Region = &reg
	}
	return r
}

func (j *Job) stopRequested(ctx context.Context) bool {
	return j.cancelled.Load() || ctx.Err() != nil
}

func (j *Job) run(ctx context.Context, stream ports.VideoStream, rec ports.Recognizer) {
	defer metrics.ActiveJobs.Dec()

	info := stream.Info()
	fps := info.EffectiveFPS()
	step := Step(fps, j.in.SampleIntervalMs)
	stream.SetStride(step)
	seg := segmenter.New(int64(j.in.MinDurationMs))
	j.log.Debug("Sampling every %d frames (%d ms)", step, j.in.SampleIntervalMs)

	lastIndex := -1
	for {
		if j.stopRequested(ctx) {
			j.finish(ctx, stream, seg, types.StatusCancelled, nil)
			return
		}

		f, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if j.stopRequested(ctx) {
				j.finish(ctx, stream, seg, types.StatusCancelled, nil)
				return
			}
			j.finish(ctx, stream, seg, types.StatusErrored, &VideoReadError{Frame: lastIndex, Err: err})
			return
		}
		lastIndex = f.Index
		if f.Index%step != 0 {
			continue
		}

		ts := types.TimestampMs(f.Index, fps)
		raw := j.recognize(ctx, rec, f)
		if j.stopRequested(ctx) {
			// The reply of an aborted call is not an observation.
			j.finish(ctx, stream, seg, types.StatusCancelled, nil)
			return
		}
		s := types.Sample{TimestampMs: ts, Raw: raw, Filtered: strings.TrimSpace(textfilter.Filter(raw))}
		if s.Raw != "" && s.Filtered == "" {
			metrics.FilteredTotal.Inc()
			j.log.Debug("Filtered reply at %d ms: %q", s.TimestampMs, s.Raw)
		}
		metrics.FramesSampledTotal.Inc()
		if j.in.OnSample != nil {
			j.in.OnSample(s)
		}

		e, emitted, err := seg.Push(s.TimestampMs, s.Filtered)
		if err != nil {
			j.log.Warn("Skipped sample at %d ms: %v", s.TimestampMs, err)
			continue
		}

		j.mu.Lock()
		j.snap.FramesProcessed++
		j.snap.Progress = Progress(f.Index, j.snap.TotalFrames)
		if emitted {
			j.appendLocked(e)
		}
		j.mu.Unlock()
	}

	j.finish(ctx, stream, seg, types.StatusDone, nil)
}

func (j *Job) recognize(ctx context.Context, rec ports.Recognizer, f types.Frame) string {
	var img image.Image = roi.Crop(f.Image, j.in.Region)
	img = roi.Fit(img, j.in.MaxImageWidth)
	text, err := rec.Recognize(ctx, img)
	if err != nil {
		if ctx.Err() == nil {
			j.log.Debug("Recognition failed at frame %d: %v", f.Index, err)
		}
		return ""
	}
	return strings.TrimSpace(text)
}

func (j *Job) appendLocked(e types.SubtitleEntry) {
	j.entries = append(j.entries, e)
	j.snap.EntryCount = len(j.entries)
	metrics.EntriesEmittedTotal.Inc()
}

// finish flushes the segmenter, writes output for done and cancelled jobs and
// moves the job to its terminal state.
func (j *Job) finish(ctx context.Context, stream ports.VideoStream, seg *segmenter.Segmenter, status types.Status, cause error) {
	if err := stream.Close(); err != nil {
		j.log.Debug("Closing video stream: %v", err)
	}

	j.mu.Lock()
	if e, ok := seg.Flush(); ok {
		j.appendLocked(e)
	}
	if status == types.StatusDone {
		j.snap.Progress = 100
	}
	entries := append([]types.SubtitleEntry(nil), j.entries...)
	j.mu.Unlock()

	var (
		paths    subtitles.Paths
		writeErr error
	)
	if status != types.StatusErrored {
		base := j.in.OutputBase
		if base == "" {
			base = DefaultOutputBase(j.in.VideoPath)
		}
		paths, writeErr = subtitles.Write(entries, base)
		if writeErr != nil {
			j.log.Error("Failed to write subtitles: %v", writeErr)
		}
	}

	j.mu.Lock()
	j.snap.OutputPaths = paths.List()
	j.snap.WriteErr = writeErr
	j.mu.Unlock()

	j.terminate(ctx, status, cause)
}

// fail ends a job that never started running.
func (j *Job) fail(ctx context.Context, cause error) {
	j.terminate(ctx, types.StatusErrored, cause)
}

func (j *Job) terminate(ctx context.Context, status types.Status, cause error) {
	j.mu.Lock()
	j.snap.Status = status
	j.snap.Err = cause
	j.snap.FinishedAt = time.Now()
	j.snap.Elapsed = j.snap.FinishedAt.Sub(j.snap.StartedAt)
	j.mu.Unlock()

	metrics.JobsTotal.WithLabelValues(string(status)).Inc()
	switch status {
	case types.StatusDone:
		j.log.Info("Job %s finished with %d entries", j.id, len(j.Entries()))
	case types.StatusCancelled:
		j.log.Warn("Job %s cancelled with %d entries", j.id, len(j.Entries()))
	default:
		j.log.Error("Job %s failed: %v", j.id, cause)
	}

	if j.rec != nil {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		if err := j.rec.RecordJob(rctx, j.Report()); err != nil {
			j.log.Warn("Failed to record job %s: %v", j.id, err)
		}
		cancel()
	}
	if j.cancel != nil {
		j.cancel()
	}
	close(j.done)
}
