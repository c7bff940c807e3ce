// Package stub provides recognizers that never call out to a service.
package stub

import (
	"context"
	"image"
	"sync"
)

// Empty recognizes nothing. It backs the "dummy" engine.
type Empty struct{}

func (Empty) Recognize(context.Context, image.Image) (string, error) { return "", nil }

// Script replays a fixed list of replies, one per call, then returns "".
type Script struct {
	mu      sync.Mutex
	replies []string
	next    int
}

func NewScript(replies ...string) *Script {
	return &Script{replies: append([]string(nil), replies...)}
}

func (s *Script) Recognize(ctx context.Context, _ image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.replies) {
		return "", nil
	}
	r := s.replies[s.next]
	s.next++
	return r, nil
}
