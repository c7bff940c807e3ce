// Package segmenter turns a time-ordered stream of recognized text into
// subtitle intervals by run-length change detection.
package segmenter

import (
	"errors"
	"strings"
	"unicode"

	"github.com/forPelevin/subextract/internal/types"
)

var ErrOutOfOrder = errors.New("segmenter: sample timestamp went backwards")

type Segmenter struct {
	minDurationMs int64

	activeText  string
	activeStart int64
	active      bool

	last    int64
	hasLast bool
}

func New(minDurationMs int64) *Segmenter {
	if minDurationMs < 0 {
		minDurationMs = 0
	}
	return &Segmenter{minDurationMs: minDurationMs}
}

// Push consumes one sample. It returns the entry closed by this sample, if any.
// text is expected to be filtered and trimmed already.
func (s *Segmenter) Push(t int64, text string) (types.SubtitleEntry, bool, error) {
	if s.hasLast && t < s.last {
		return types.SubtitleEntry{}, false, ErrOutOfOrder
	}
	s.last = t
	s.hasLast = true

	switch {
	case text != "" && !s.active:
		s.open(t, text)
		return types.SubtitleEntry{}, false, nil
	case text != "" && Normalize(text) == Normalize(s.activeText):
		return types.SubtitleEntry{}, false, nil
	case text != "":
		e := s.close(t)
		s.open(t, text)
		return e, true, nil
	case s.active:
		return s.close(t), true, nil
	default:
		return types.SubtitleEntry{}, false, nil
	}
}

// Flush closes the open span, if any, at the last observed timestamp.
func (s *Segmenter) Flush() (types.SubtitleEntry, bool) {
	if !s.active {
		return types.SubtitleEntry{}, false
	}
	return s.close(s.last), true
}

func (s *Segmenter) open(t int64, text string) {
	s.active = true
	s.activeStart = t
	s.activeText = text
}

func (s *Segmenter) close(t int64) types.SubtitleEntry {
	end := t
	if floor := s.activeStart + s.minDurationMs; floor > end {
		end = floor
	}
	e := types.SubtitleEntry{StartMs: s.activeStart, EndMs: end, Text: s.activeText}
	s.active = false
	s.activeText = ""
	s.activeStart = 0
	return e
}

// Normalize lowercases text and removes all whitespace.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
