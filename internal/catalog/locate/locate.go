// Package locate implements the catalog on top of the system filename
// index: queries run through locate(1), rebuilds through updatedb(8).
package locate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Cyclone1070/locatecat/internal/process"
	"github.com/Cyclone1070/locatecat/internal/record"
	"github.com/Cyclone1070/locatecat/internal/session"
)

// ErrUpdateThrottled is returned by Update when a rebuild was started too
// recently.
var ErrUpdateThrottled = errors.New("index update throttled")

// UpdateError is returned when the rebuild command fails.
type UpdateError struct {
	Cmd      string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *UpdateError) Error() string {
	msg := fmt.Sprintf("index update with %s failed (exit %d)", e.Cmd, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *UpdateError) Unwrap() error { return e.Cause }

var _ session.Stream = (*process.Child)(nil)

// Catalog creates locate-backed search sessions. It keeps no per-query state.
type Catalog struct {
	opts     Options
	sessOpts session.Options
	runner   *process.Runner
	prune    *PruneMatcher
	logger   *slog.Logger
	lookPath func(string) (string, error)

	updates *rate.Limiter
	probes  singleflight.Group

	mu      sync.Mutex
	rebuild *process.Job
}

// New creates a Catalog. sessOpts is used for every session it creates;
// its Filter is replaced by the prune patterns when there are any.
func New(opts Options, sessOpts session.Options, logger *slog.Logger) (*Catalog, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	limit := rate.Inf
	if opts.UpdateInterval > 0 {
		limit = rate.Every(opts.UpdateInterval)
	}

	runner := process.NewRunner(logger)
	if opts.GracePeriod > 0 {
		runner.GracePeriod = opts.GracePeriod
	}

	c := &Catalog{
		opts:     opts,
		sessOpts: sessOpts,
		runner:   runner,
		prune:    NewPruneMatcher(opts.Prune),
		logger:   logger.With("catalog", "locate"),
		lookPath: exec.LookPath,
		updates:  rate.NewLimiter(limit, 1),
	}
	if c.prune != nil {
		c.sessOpts.Filter = c.prune.Keep
	}
	if c.sessOpts.Logger == nil {
		c.sessOpts.Logger = logger
	}
	return c, nil
}

// Options returns the options the catalog was created with.
func (c *Catalog) Options() Options {
	return c.opts
}

// Delimiter returns the record delimiter locate is asked to use.
func (c *Catalog) Delimiter() byte {
	if c.opts.NullTerminated {
		return record.Null
	}
	return record.Newline
}

// Args builds the locate argument vector for query.
func (c *Catalog) Args(query string) []string {
	return c.args(query, c.opts.Limit)
}

func (c *Catalog) args(query string, limit int) []string {
	argv := []string{c.opts.Command}
	if c.opts.NullTerminated {
		argv = append(argv, "-0")
	}
	if c.opts.IgnoreCase {
		argv = append(argv, "-i")
	}
	if c.opts.Basename {
		argv = append(argv, "-b")
	}
	if c.opts.Database != "" {
		argv = append(argv, "-d", c.opts.Database)
	}
	if limit > 0 {
		argv = append(argv, "-l", strconv.Itoa(limit))
	}
	return append(argv, "--", query)
}

// Check reports whether the locate binary can be found.
func (c *Catalog) Check() error {
	if _, err := c.lookPath(c.opts.Command); err != nil {
		return &process.SpawnError{Cmd: c.opts.Command, Cause: err}
	}
	return nil
}

// Open starts locate for query.
func (c *Catalog) Open(ctx context.Context, query string) (session.Stream, error) {
	child, err := process.Spawn(ctx, c.Args(query), process.Options{
		Delimiter:   c.Delimiter(),
		GracePeriod: c.opts.GracePeriod,
		Logger:      c.logger,
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// NewSearch creates a session delivering results to cb. Nothing is started
// until the first Append.
func (c *Catalog) NewSearch(cb session.Callback) *session.Session {
	return session.New(c, cb, c.sessOpts)
}

// NewFeed creates a session delivering results over a channel.
func (c *Catalog) NewFeed() *session.Feed {
	return session.NewFeed(c, c.sessOpts)
}

// IsAvailable runs a one-result query for "/" and reports whether locate
// ran, exited cleanly, and printed an absolute path or nothing at all.
// A missing tool or database only makes it return false. Concurrent calls
// share one probe.
func (c *Catalog) IsAvailable(ctx context.Context) bool {
	if err := c.Check(); err != nil {
		c.logger.Debug("locate not found", "error", err)
		return false
	}
	if c.opts.ProbeTimeout <= 0 {
		return c.probe(ctx)
	}

	ch := c.probes.DoChan("probe", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.ProbeTimeout)
		defer cancel()
		return c.probe(ctx), nil
	})
	select {
	case res := <-ch:
		return res.Val.(bool)
	case <-ctx.Done():
		return false
	}
}

func (c *Catalog) probe(ctx context.Context) bool {
	res, err := c.runner.Run(ctx, c.args("/", 1))
	if err != nil {
		attrs := []any{"error", err}
		if res != nil {
			attrs = append(attrs, "exit_code", res.ExitCode, "stderr", strings.TrimSpace(string(res.Stderr)))
		}
		c.logger.Debug("locate probe failed", attrs...)
		return false
	}

	first, _, _ := bytes.Cut(res.Stdout, []byte{c.Delimiter()})
	if len(first) > 0 && first[0] != '/' {
		c.logger.Debug("locate probe returned a malformed record", "record", string(first))
		return false
	}
	return true
}

// Update starts a rebuild of the index and returns once the rebuild command
// is running; it does not wait for it to finish and the command outlives the
// caller. A call made while a rebuild runs joins it. Calls closer together
// than the update interval get ErrUpdateThrottled.
func (c *Catalog) Update(ctx context.Context) error {
	if err := c.checkUpdate(); err != nil {
		return err
	}
	if !c.updates.Allow() {
		return ErrUpdateThrottled
	}
	_, err := c.startUpdate()
	return err
}

// UpdateWait rebuilds the index and waits for the result or for ctx.
// It is not throttled but joins a rebuild that is already running. Leaving
// on ctx does not stop the rebuild.
func (c *Catalog) UpdateWait(ctx context.Context) error {
	if err := c.checkUpdate(); err != nil {
		return err
	}
	job, err := c.startUpdate()
	if err != nil {
		return err
	}
	res, err := job.Wait(ctx)
	if res == nil {
		return err
	}
	return c.updateErr(res, err)
}

func (c *Catalog) checkUpdate() error {
	cmd := c.opts.updateCommand()
	if _, err := c.lookPath(cmd[0]); err != nil {
		return &process.SpawnError{Cmd: cmd[0], Cause: err}
	}
	return nil
}

// startUpdate returns the running rebuild, starting one if there is none.
func (c *Catalog) startUpdate() (*process.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rebuild != nil {
		c.logger.Debug("joining running index update", "pid", c.rebuild.Pid())
		return c.rebuild, nil
	}

	cmd := c.opts.updateCommand()
	c.logger.Info("updating index", "cmd", cmd[0], "args", cmd[1:])

	job, err := c.runner.Start(cmd, c.opts.UpdateTimeout)
	if err != nil {
		return nil, &UpdateError{Cmd: cmd[0], ExitCode: -1, Cause: err}
	}
	c.rebuild = job
	go c.finishUpdate(job, time.Now())
	return job, nil
}

func (c *Catalog) finishUpdate(job *process.Job, start time.Time) {
	res, err := job.Wait(context.Background())

	c.mu.Lock()
	c.rebuild = nil
	c.mu.Unlock()

	if err := c.updateErr(res, err); err != nil {
		c.logger.Warn("index update failed", "error", err)
		return
	}
	c.logger.Info("index updated", "duration", time.Since(start))
}

func (c *Catalog) updateErr(res *process.Result, err error) error {
	if err == nil {
		return nil
	}
	ue := &UpdateError{Cmd: c.opts.updateCommand()[0], ExitCode: -1, Cause: err}
	if res != nil {
		ue.ExitCode = res.ExitCode
		ue.Stderr = strings.TrimSpace(string(res.Stderr))
	}
	return ue
}
