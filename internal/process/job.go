package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// Job is a command started by Runner.Start. Its stdout is discarded and its
// stderr goes to a temporary file, so it holds no pipe to the caller and
// keeps running after the caller exits.
type Job struct {
	name    string
	cmd     *exec.Cmd
	stderr  *os.File
	max     int
	grace   time.Duration
	timeout time.Duration

	done chan struct{}
	res  *Result
	err  error
}

// Start launches command and returns once it is running. A background
// goroutine reaps it; after timeout (if positive) it is interrupted and then
// killed when the grace period runs out.
func (r *Runner) Start(command []string, timeout time.Duration) (*Job, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	r.Logger.Debug("starting command", "cmd", command[0], "args", command[1:], "timeout", timeout)

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil

	stderr, err := os.CreateTemp("", "locatecat-stderr-*")
	if err != nil {
		r.Logger.Debug("stderr of background command is discarded", "error", err)
		stderr = nil
	} else {
		cmd.Stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		if stderr != nil {
			_ = stderr.Close()
			_ = os.Remove(stderr.Name())
		}
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	j := &Job{
		name:    command[0],
		cmd:     cmd,
		stderr:  stderr,
		max:     r.maxOutput(),
		grace:   r.gracePeriod(),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	go j.reap()
	return j, nil
}

// Pid returns the process id of the command.
func (j *Job) Pid() int {
	return j.cmd.Process.Pid
}

// Done is closed once the command has exited and its result is recorded.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the command exits or ctx is done. Leaving early does not
// stop the command.
func (j *Job) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-j.done:
		return j.res, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (j *Job) reap() {
	defer close(j.done)

	exited := make(chan error, 1)
	go func() {
		exited <- j.cmd.Wait()
	}()

	var expired <-chan time.Time
	if j.timeout > 0 {
		timer := time.NewTimer(j.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	var execErr error
	select {
	case execErr = <-exited:
	case <-expired:
		_ = j.cmd.Process.Signal(os.Interrupt)
		select {
		case <-exited:
		case <-time.After(j.grace):
			_ = j.cmd.Process.Kill()
			<-exited
		}
		execErr = ErrTimeout
	}

	stderr, truncated := j.readStderr()
	j.res = &Result{
		Stderr:    stderr,
		ExitCode:  exitCode(execErr),
		Truncated: truncated,
	}
	if errors.Is(execErr, ErrTimeout) {
		j.res.ExitCode = -1
	}
	if execErr != nil {
		j.err = &CommandError{Cmd: j.name, Cause: execErr, Stage: "execution"}
	}
}

func (j *Job) readStderr() ([]byte, bool) {
	if j.stderr == nil {
		return nil, false
	}
	defer os.Remove(j.stderr.Name())
	defer j.stderr.Close()

	if _, err := j.stderr.Seek(0, io.SeekStart); err != nil {
		return nil, false
	}
	c := newCollector(j.max)
	_, _ = io.Copy(c, j.stderr)
	return c.Bytes(), c.Truncated()
}
