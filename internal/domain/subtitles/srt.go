package subtitles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/subextract/internal/types"
)

// FormatTimestamp renders milliseconds as HH:MM:SS,mmm.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	s := (ms % 60000) / 1000
	r := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, r)
}

func RenderSRT(entries []types.SubtitleEntry) string {
	lines := make([]string, 0, len(entries)*4)
	for i, e := range entries {
		lines = append(lines,
			strconv.Itoa(i+1),
			FormatTimestamp(e.StartMs)+" --> "+FormatTimestamp(e.EndMs),
			sanitizeLine(e.Text),
			"",
		)
	}
	return strings.Join(lines, "\n")
}

func RenderTranscript(entries []types.SubtitleEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(sanitizeLine(e.Text))
		b.WriteString("\n\n")
	}
	return strings.TrimRightFunc(b.String(), isTrailingSpace)
}

// sanitizeLine keeps one entry per cue: blank lines inside text would end the
// cue early in SRT readers.
func sanitizeLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	parts := strings.Split(s, "\n")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func isTrailingSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
