package usecase

import (
	"errors"
	"fmt"
)

// ErrAlreadyStarted is returned by Start while another job is running.
var ErrAlreadyStarted = errors.New("extraction already running")

// VideoOpenError means the source could not be opened. The job never ran.
type VideoOpenError struct {
	Path string
	Err  error
}

func (e *VideoOpenError) Error() string { return fmt.Sprintf("open video %s: %v", e.Path, e.Err) }

func (e *VideoOpenError) Unwrap() error { return e.Err }

// VideoReadError means decoding failed part way through.
type VideoReadError struct {
	Frame int
	Err   error
}

func (e *VideoReadError) Error() string {
	return fmt.Sprintf("read frame after %d: %v", e.Frame, e.Err)
}

func (e *VideoReadError) Unwrap() error { return e.Err }
