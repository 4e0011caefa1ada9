package process

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timeout")

// ErrEmptyCommand is returned when no argument vector was given.
var ErrEmptyCommand = errors.New("empty command")

// SpawnError is returned when the child process could not be started.
// No process is left behind when it is returned.
type SpawnError struct {
	Cmd   string
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Cmd, e.Cause)
}
func (e *SpawnError) Unwrap() error     { return e.Cause }
func (e *SpawnError) SpawnFailed() bool { return true }

// StreamError is returned when reading the child's output fails for a
// reason other than a clean end of stream.
type StreamError struct {
	Cmd   string
	Pid   int
	Cause error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("reading output of %s (pid %d): %v", e.Cmd, e.Pid, e.Cause)
}
func (e *StreamError) Unwrap() error      { return e.Cause }
func (e *StreamError) StreamFailed() bool { return true }

// CommandError represents short-lived command failures (start, execution).
type CommandError struct {
	Cmd   string
	Cause error
	Stage string // "start", "execution"
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed at %s: %v", e.Cmd, e.Stage, e.Cause)
}
func (e *CommandError) Unwrap() error { return e.Cause }
