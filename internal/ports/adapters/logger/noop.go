package logger

import "github.com/forPelevin/subextract/internal/ports"

// Noop discards everything.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Debug(string, ...any)                {}
func (Noop) Info(string, ...any)                 {}
func (Noop) Warn(string, ...any)                 {}
func (Noop) Error(string, ...any)                {}
func (n Noop) WithComponent(string) ports.Logger { return n }
