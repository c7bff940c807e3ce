// Package logger provides ports.Logger implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/forPelevin/subextract/internal/ports"
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// Console writes translated, optionally colored lines to a writer.
type Console struct {
	level     ports.LogLevel
	component string
	color     bool
	out       io.Writer
	mu        *sync.Mutex
}

// NewConsole logs to stderr. Color is enabled when stderr is a terminal.
func NewConsole(level ports.LogLevel) *Console {
	fd := os.Stderr.Fd()
	return &Console{
		level: level,
		color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		out:   os.Stderr,
		mu:    &sync.Mutex{},
	}
}

// NewConsoleWriter logs to w without color.
func NewConsoleWriter(level ports.LogLevel, w io.Writer) *Console {
	return &Console{level: level, out: w, mu: &sync.Mutex{}}
}

func (l *Console) Debug(msg string, args ...any) { l.log(ports.LevelDebug, msg, args...) }
func (l *Console) Info(msg string, args ...any)  { l.log(ports.LevelInfo, msg, args...) }
func (l *Console) Warn(msg string, args ...any)  { l.log(ports.LevelWarn, msg, args...) }
func (l *Console) Error(msg string, args ...any) { l.log(ports.LevelError, msg, args...) }

func (l *Console) WithComponent(component string) ports.Logger {
	c := *l
	c.component = component
	return &c
}

func (l *Console) log(level ports.LogLevel, msg string, args ...any) {
	if level < l.level || l.level == ports.LevelQuiet {
		return
	}
	text := l10n.F(msg, args...)

	var line string
	switch {
	case l.component != "" && l.color:
		line = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, text)
	case l.component != "":
		line = fmt.Sprintf("[%s] %s", l.component, text)
	default:
		line = text
	}

	if l.color {
		switch level {
		case ports.LevelDebug:
			line = colorGray + line + colorReset
		case ports.LevelWarn:
			line = colorYellow + line + colorReset
		case ports.LevelError:
			line = colorRed + line + colorReset
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}
