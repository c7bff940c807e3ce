package ports

import (
	"context"
	"image"

	"github.com/forPelevin/subextract/internal/types"
)

// FrameSource opens videos for sequential decoding.
type FrameSource interface {
	Open(ctx context.Context, path string) (VideoStream, error)
}

// VideoStream yields frames of one open video in decode order.
type VideoStream interface {
	Info() types.VideoInfo
	// SetStride limits decoding output to frames whose index is a multiple of n.
	// It must be called before the first Next.
	SetStride(n int)
	// Next returns the next frame, or io.EOF once the video is exhausted.
	Next(ctx context.Context) (types.Frame, error)
	// Seek positions the stream so the next frame returned has index >= index.
	Seek(ctx context.Context, index int) error
	Close() error
}

// Prober reads stream metadata without decoding frames.
type Prober interface {
	Probe(ctx context.Context, path string) (types.VideoInfo, error)
}

// Recognizer turns an image into text. Implementations honor ctx for
// cancellation and bound their own blocking time.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// JobRecorder persists finished jobs.
type JobRecorder interface {
	RecordJob(ctx context.Context, r types.Report) error
}
