package process

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultMaxOutput caps the output kept by Run.
const DefaultMaxOutput = 64 * 1024

// Result is the outcome of a short-lived command.
type Result struct {
	Stdout    []byte
	Stderr    []byte
	ExitCode  int
	Truncated bool
}

// Runner executes short-lived commands such as the availability probe and
// index rebuilds, keeping a bounded amount of their output.
type Runner struct {
	MaxOutput   int
	GracePeriod time.Duration
	Logger      *slog.Logger
}

// NewRunner creates a Runner with default limits.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		MaxOutput:   DefaultMaxOutput,
		GracePeriod: DefaultGracePeriod,
		Logger:      logger,
	}
}

// Run executes a command until it exits or ctx is done, and returns its
// output and exit code. A non-zero exit is reported both in the Result and
// as the returned error.
func (r *Runner) Run(ctx context.Context, command []string) (*Result, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	r.Logger.Debug("executing command", "cmd", command[0], "args", command[1:])

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = nil

	stdout := newCollector(r.maxOutput())
	stderr := newCollector(r.maxOutput())
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = r.gracePeriod()

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	err := cmd.Wait()
	res := &Result{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		ExitCode:  exitCode(err),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, &CommandError{Cmd: command[0], Cause: ctxErr, Stage: "execution"}
		}
		return res, &CommandError{Cmd: command[0], Cause: err, Stage: "execution"}
	}
	return res, nil
}

func (r *Runner) maxOutput() int {
	if r.MaxOutput <= 0 {
		return DefaultMaxOutput
	}
	return r.MaxOutput
}

func (r *Runner) gracePeriod() time.Duration {
	if r.GracePeriod <= 0 {
		return DefaultGracePeriod
	}
	return r.GracePeriod
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
