package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/subextract/internal/types"
)

// IOError reports a failed output write.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

type Paths struct {
	SRT        string
	Transcript string
}

func (p Paths) List() []string {
	var out []string
	if p.SRT != "" {
		out = append(out, p.SRT)
	}
	if p.Transcript != "" {
		out = append(out, p.Transcript)
	}
	return out
}

// BasePath strips a caption or transcript extension from p.
func BasePath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".srt", ".txt":
		return strings.TrimSuffix(p, filepath.Ext(p))
	}
	return p
}

// Write stores entries as <base>.srt and <base>.txt. Nothing is written for an
// empty entry list.
func Write(entries []types.SubtitleEntry, basePath string) (Paths, error) {
	if len(entries) == 0 {
		return Paths{}, nil
	}
	base := BasePath(basePath)
	if dir := filepath.Dir(base); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, &IOError{Path: dir, Err: err}
		}
	}

	paths := Paths{SRT: base + ".srt", Transcript: base + ".txt"}
	if err := os.WriteFile(paths.SRT, []byte(RenderSRT(entries)), 0o644); err != nil {
		return Paths{}, &IOError{Path: paths.SRT, Err: err}
	}
	if err := os.WriteFile(paths.Transcript, []byte(RenderTranscript(entries)), 0o644); err != nil {
		return Paths{SRT: paths.SRT}, &IOError{Path: paths.Transcript, Err: err}
	}
	return paths, nil
}
