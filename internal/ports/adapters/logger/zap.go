package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/forPelevin/subextract/internal/ports"
)

// Zap emits JSON lines through a zap.SugaredLogger.
type Zap struct {
	s *zap.SugaredLogger
}

// NewZap builds a production JSON logger at the given level writing to stderr.
func NewZap(level ports.LogLevel) (*Zap, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Zap{s: l.Sugar()}, nil
}

func (z *Zap) Debug(msg string, args ...any) { z.s.Debugf(msg, args...) }
func (z *Zap) Info(msg string, args ...any)  { z.s.Infof(msg, args...) }
func (z *Zap) Warn(msg string, args ...any)  { z.s.Warnf(msg, args...) }
func (z *Zap) Error(msg string, args ...any) { z.s.Errorf(msg, args...) }

func (z *Zap) WithComponent(component string) ports.Logger {
	return &Zap{s: z.s.With("component", component)}
}

// Sync flushes buffered entries.
func (z *Zap) Sync() error { return z.s.Sync() }

func zapLevel(l ports.LogLevel) zapcore.Level {
	switch l {
	case ports.LevelDebug:
		return zapcore.DebugLevel
	case ports.LevelWarn:
		return zapcore.WarnLevel
	case ports.LevelError:
		return zapcore.ErrorLevel
	case ports.LevelQuiet:
		return zapcore.FatalLevel + 1
	default:
		return zapcore.InfoLevel
	}
}
