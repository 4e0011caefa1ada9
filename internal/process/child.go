// Package process runs external search tools as child processes and exposes
// their standard output as a stream of records.
package process

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/Cyclone1070/locatecat/internal/record"
)

// DefaultGracePeriod is how long Terminate waits after SIGTERM before killing.
const DefaultGracePeriod = 500 * time.Millisecond

// Options configures a spawned child.
type Options struct {
	// Delimiter separates records on the child's stdout.
	Delimiter byte
	// GracePeriod between SIGTERM and SIGKILL in Terminate.
	GracePeriod time.Duration
	Dir         string
	Env         []string
	Logger      *slog.Logger
}

// Child owns one running process and the read end of its stdout pipe.
// A Child is driven from a single goroutine; only Terminate and WaitReady
// may be called concurrently with the others.
type Child struct {
	name   string
	cmd    *exec.Cmd
	pipe   *os.File
	raw    syscall.RawConn
	reader *record.Reader
	grace  time.Duration
	logger *slog.Logger

	exited  chan struct{}
	waitErr error

	termOnce sync.Once
	termErr  error
	closed   chan struct{}
}

// Spawn starts argv[0] with the remaining arguments and connects its stdout
// to a pipe owned by the returned Child. Stderr and stdin are discarded.
func Spawn(ctx context.Context, argv []string, opts Options) (*Child, error) {
	if len(argv) == 0 {
		return nil, &SpawnError{Cmd: "", Cause: ErrEmptyCommand}
	}
	if err := ctx.Err(); err != nil {
		return nil, &SpawnError{Cmd: argv[0], Cause: err}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	grace := opts.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Cmd: argv[0], Cause: err}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.Stdin = nil
	cmd.Stdout = w
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, &SpawnError{Cmd: argv[0], Cause: err}
	}
	// The child holds its own copy of the write end.
	_ = w.Close()

	raw, err := r.SyscallConn()
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		_ = r.Close()
		return nil, &SpawnError{Cmd: argv[0], Cause: err}
	}

	c := &Child{
		name:   argv[0],
		cmd:    cmd,
		pipe:   r,
		raw:    raw,
		reader: record.NewReader(r, opts.Delimiter),
		grace:  grace,
		logger: logger,
		exited: make(chan struct{}),
		closed: make(chan struct{}),
	}

	go func() {
		c.waitErr = cmd.Wait()
		close(c.exited)
	}()

	logger.Debug("spawned child", "cmd", argv[0], "args", argv[1:], "pid", cmd.Process.Pid)
	return c, nil
}

// Pid returns the child's process id.
func (c *Child) Pid() int {
	return c.cmd.Process.Pid
}

// Exited reports whether the process has been reaped.
func (c *Child) Exited() bool {
	select {
	case <-c.exited:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit code once the process exited, -1 before that or
// when it was killed by a signal.
func (c *Child) ExitCode() int {
	if !c.Exited() {
		return -1
	}
	return c.cmd.ProcessState.ExitCode()
}

func (c *Child) terminated() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// HasMore reports, without blocking, whether the next NextRecord call will
// return immediately. It is also true once the stream has ended or the
// process has exited, so that the following NextRecord can report the end;
// callers must look at NextRecord's result, not at HasMore alone.
func (c *Child) HasMore() bool {
	if c.terminated() || c.reader.Ready() || c.Exited() {
		return true
	}

	ready, err := pollReadable(c.raw, 0)
	if err != nil {
		return true
	}
	if !ready {
		return false
	}

	// Poll said a read will not block; pull what is there and check again.
	_ = c.reader.Fill()
	return c.reader.Ready()
}

// WaitReady blocks for at most timeout until the pipe becomes readable or
// the stream ends, and reports whether HasMore-style progress is possible.
// It is safe to call concurrently with Terminate.
func (c *Child) WaitReady(timeout time.Duration) bool {
	if c.terminated() || c.reader.Ready() || c.Exited() {
		return true
	}
	ready, err := pollReadable(c.raw, timeout)
	if err != nil {
		return true
	}
	return ready
}

// NextRecord appends the next record to dst. It returns io.EOF once the
// child closed its output (or was terminated), and a *StreamError when
// reading failed; in the latter case the process is terminated.
func (c *Child) NextRecord(dst []byte) ([]byte, error) {
	if c.terminated() && !c.reader.Ready() {
		return dst, io.EOF
	}

	out, err := c.reader.Next(dst)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, io.EOF) {
		return out, io.EOF
	}
	if c.terminated() {
		// Reads racing a Terminate see a closed file; that is an end, not a failure.
		return out, io.EOF
	}

	streamErr := &StreamError{Cmd: c.name, Pid: c.Pid(), Cause: err}
	c.logger.Warn("child stream failed", "cmd", c.name, "pid", c.Pid(), "error", err)
	_ = c.Terminate()
	return out, streamErr
}

// Terminate stops the process if it is still running, reaps it, and closes
// the pipe. It is idempotent and safe to call from any goroutine.
func (c *Child) Terminate() error {
	c.termOnce.Do(func() {
		if !c.Exited() {
			_ = c.cmd.Process.Signal(syscall.SIGTERM)
			timer := time.NewTimer(c.grace)
			select {
			case <-c.exited:
				timer.Stop()
			case <-timer.C:
				c.logger.Debug("child ignored SIGTERM, killing", "cmd", c.name, "pid", c.Pid())
				_ = c.cmd.Process.Kill()
				<-c.exited
			}
		}
		close(c.closed)
		c.termErr = c.pipe.Close()
		c.logger.Debug("terminated child", "cmd", c.name, "pid", c.Pid(), "exit_code", c.cmd.ProcessState.ExitCode())
	})
	return c.termErr
}
