package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/forPelevin/subextract/internal/types"
)

func TestFormatTimestamp(t *testing.T) {
	tests := map[int64]string{
		0:         "00:00:00,000",
		999:       "00:00:00,999",
		1000:      "00:00:01,000",
		61234:     "00:01:01,234",
		3661000:   "01:01:01,000",
		360000000: "100:00:00,000",
		-5:        "00:00:00,000",
	}
	for in, want := range tests {
		if got := FormatTimestamp(in); got != want {
			t.Fatalf("FormatTimestamp(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatTimestamp_Monotonic(t *testing.T) {
	prev := FormatTimestamp(0)
	for ms := int64(1); ms < 3*3600000; ms += 997 {
		cur := FormatTimestamp(ms)
		if cur < prev {
			t.Fatalf("format not monotonic at %d: %q < %q", ms, cur, prev)
		}
		prev = cur
	}
}

func TestRenderSRT(t *testing.T) {
	entries := []types.SubtitleEntry{
		{StartMs: 800, EndMs: 2400, Text: "hello"},
		{StartMs: 3000, EndMs: 4200, Text: "world"},
	}
	want := "1\n00:00:00,800 --> 00:00:02,400\nhello\n\n2\n00:00:03,000 --> 00:00:04,200\nworld\n"
	if got := RenderSRT(entries); got != want {
		t.Fatalf("unexpected srt:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderTranscript(t *testing.T) {
	entries := []types.SubtitleEntry{
		{StartMs: 0, EndMs: 1, Text: "first line "},
		{StartMs: 2, EndMs: 3, Text: "second\n\nline"},
	}
	want := "first line\n\nsecond\nline"
	if got := RenderTranscript(entries); got != want {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "nested", "movie.srt")
	entries := []types.SubtitleEntry{{StartMs: 0, EndMs: 1200, Text: "hi"}}

	paths, err := Write(entries, base)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if paths.SRT != filepath.Join(dir, "nested", "movie.srt") || paths.Transcript != filepath.Join(dir, "nested", "movie.txt") {
		t.Fatalf("unexpected paths: %+v", paths)
	}
	b, err := os.ReadFile(paths.SRT)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if string(b) != "1\n00:00:00,000 --> 00:00:01,200\nhi\n" {
		t.Fatalf("unexpected srt content: %q", string(b))
	}
	b, err = os.ReadFile(paths.Transcript)
	if err != nil {
		t.Fatalf("read txt: %v", err)
	}
	if string(b) != "hi" {
		t.Fatalf("unexpected transcript content: %q", string(b))
	}
}

func TestWrite_EmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(nil, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(paths.List()) != 0 {
		t.Fatalf("expected no paths, got %+v", paths)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Fatalf("expected empty dir, got %d files", len(files))
	}
}

func TestWrite_IOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Write([]types.SubtitleEntry{{StartMs: 0, EndMs: 1, Text: "x"}}, filepath.Join(blocker, "out"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %v", err)
	}
}
