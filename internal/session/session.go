// Package session turns a growing query into a stream of scored targets.
//
// A Session owns at most one live Stream (normally a locate child process).
// Every query change terminates the current stream and opens a new one for
// the full query; records are pulled by Pump, scored, and handed to the
// callback.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Cyclone1070/locatecat/internal/score"
)

const (
	DefaultMaxBatch     = 256
	DefaultPollInterval = 50 * time.Millisecond
)

// State is the lifecycle position of a Session.
type State int

const (
	// Empty: nothing appended yet, no stream.
	Empty State = iota
	// Querying: a stream for the current query is live.
	Querying
	// Draining: the stream for the current query ended and was reaped.
	Draining
	// Closed is terminal.
	Closed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Querying:
		return "querying"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream is a running search producing delimiter-framed path records.
// HasMore must not block and must report true once the stream ended.
type Stream interface {
	HasMore() bool
	NextRecord(dst []byte) ([]byte, error)
	WaitReady(timeout time.Duration) bool
	Terminate() error
}

// Source opens streams for a query.
type Source interface {
	// Check reports whether Open can be expected to start, without starting
	// anything. A failing Check leaves the session untouched.
	Check() error
	Open(ctx context.Context, query string) (Stream, error)
}

// Callback receives each accepted result. It runs on the goroutine that
// called Pump and may call back into the session.
type Callback func(s *Session, confidence float64, t Target)

// Options tunes a Session.
type Options struct {
	// MaxBatch caps the records pulled by one Pump call.
	MaxBatch int
	// Filter drops paths before scoring when it returns false.
	Filter func(path string) bool
	// PollInterval is the readiness wait used by Drain and Feed.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Stats counts process churn over the life of a session.
type Stats struct {
	Spawns       int
	Terminations int
}

// Session is bound to one interactive query. It is not safe for concurrent
// use; Feed wraps it for use from several goroutines.
type Session struct {
	id     string
	src    Source
	cb     Callback
	opts   Options
	logger *slog.Logger

	query  string
	state  State
	stream Stream
	gen    uint64
	stats  Stats

	rec   []byte
	batch []score.Candidate
}

// New creates a session. No process is started until the first Append.
func New(src Source, cb Callback, opts Options) *Session {
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if cb == nil {
		cb = func(*Session, float64, Target) {}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.NewString()
	return &Session{
		id:     id,
		src:    src,
		cb:     cb,
		opts:   opts,
		logger: logger.With("session", id),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Stats returns the spawn and termination counters.
func (s *Session) Stats() Stats { return s.stats }

// Query returns the accumulated query.
func (s *Session) Query() string { return s.query }

// GetQuery copies the query into buf the way strlcpy does: at most
// len(buf)-1 bytes followed by a NUL. It returns the full query length so
// callers can detect truncation.
func (s *Session) GetQuery(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, &UsageError{Op: "get query", Err: ErrNoCapacity}
	}
	n := copy(buf[:len(buf)-1], s.query)
	buf[n] = 0
	return len(s.query), nil
}

// Append adds fragment to the query and restarts the search for the new
// query. The previous stream, if any, is terminated and reaped before the
// new one is opened.
//
// An empty fragment changes nothing. If the new stream cannot be opened
// the query is left as it was and the error is returned; a session that was
// querying ends up draining since its old stream is already gone.
func (s *Session) Append(ctx context.Context, fragment string) error {
	if s.state == Closed {
		return &UsageError{Op: "append", Err: ErrClosed}
	}
	if fragment == "" {
		return nil
	}
	return s.restart(ctx, s.query+fragment)
}

// Refresh reruns the current query, for example after the index was rebuilt.
func (s *Session) Refresh(ctx context.Context) error {
	if s.state == Closed {
		return &UsageError{Op: "refresh", Err: ErrClosed}
	}
	if s.query == "" {
		return nil
	}
	return s.restart(ctx, s.query)
}

func (s *Session) restart(ctx context.Context, query string) error {
	if err := s.src.Check(); err != nil {
		s.logger.Warn("search unavailable", "query", query, "error", err)
		return err
	}

	s.stop()

	stream, err := s.src.Open(ctx, query)
	if err != nil {
		if s.state == Querying {
			s.state = Draining
		}
		s.logger.Warn("failed to start search", "query", query, "error", err)
		return err
	}

	s.query = query
	s.stream = stream
	s.state = Querying
	s.stats.Spawns++
	s.logger.Debug("search started", "query", query)
	return nil
}

// stop terminates the live stream and invalidates deliveries still in
// flight for it.
func (s *Session) stop() {
	s.gen++
	s.release()
}

func (s *Session) release() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Terminate(); err != nil {
		s.logger.Debug("terminate stream", "error", err)
	}
	s.stream = nil
	s.stats.Terminations++
}

// HasMore reports, without blocking, whether Pump has something to do.
func (s *Session) HasMore() bool {
	return s.state == Querying && s.stream.HasMore()
}

// WaitReady waits at most timeout for the live stream to become ready.
// It returns false right away when there is no live stream.
func (s *Session) WaitReady(timeout time.Duration) bool {
	if s.state != Querying {
		return false
	}
	return s.stream.WaitReady(timeout)
}

// Pump pulls the records that are ready (at most MaxBatch), scores them,
// and invokes the callback for each accepted one. Records with equal
// confidence within the batch are put in tie-break order; otherwise the
// stream's order is kept. At end of stream the stream is reaped and the
// session moves to Draining. Read failures are treated as end of stream.
//
// It returns the number of callbacks made.
func (s *Session) Pump() (int, error) {
	switch s.state {
	case Closed:
		return 0, &UsageError{Op: "pump", Err: ErrClosed}
	case Empty, Draining:
		return 0, nil
	}

	gen := s.gen
	query := s.query
	s.batch = s.batch[:0]
	ended := false

	for n := 0; n < s.opts.MaxBatch && s.stream.HasMore(); n++ {
		rec, err := s.stream.NextRecord(s.rec[:0])
		s.rec = rec
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("search stream failed", "query", query, "error", err)
			}
			ended = true
			break
		}

		path := string(rec)
		if s.opts.Filter != nil && !s.opts.Filter(path) {
			continue
		}
		conf, ok := score.Score(query, path)
		if !ok {
			continue
		}
		s.batch = append(s.batch, score.Candidate{Path: path, Confidence: conf})
	}

	if ended {
		s.release()
		s.state = Draining
		s.logger.Debug("search finished", "query", query)
	}

	score.OrderBatch(s.batch)

	delivered := 0
	for _, c := range s.batch {
		// The callback may have appended or closed.
		if s.gen != gen {
			break
		}
		s.cb(s, c.Confidence, NewTarget(c.Path))
		delivered++
	}
	return delivered, nil
}

// Drain pumps until the current query's stream has ended, ctx is done, or
// the session leaves Querying. It returns the number of callbacks made.
func (s *Session) Drain(ctx context.Context) (int, error) {
	total := 0
	for s.state == Querying {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if !s.WaitReady(s.opts.PollInterval) {
			continue
		}
		n, err := s.Pump()
		total += n
		if err != nil {
			return total, err
		}
	}
	if s.state == Closed {
		return total, &UsageError{Op: "drain", Err: ErrClosed}
	}
	return total, nil
}

// Close terminates the live stream, if any. No callback runs after Close
// returns. Close is idempotent.
func (s *Session) Close() error {
	if s.state == Closed {
		return nil
	}
	s.stop()
	s.state = Closed
	s.logger.Debug("session closed", "spawns", s.stats.Spawns, "terminations", s.stats.Terminations)
	return nil
}
