package session

import (
	"context"
	"sync"
	"time"
)

// Result is one delivery from a Feed. The last delivery for a query whose
// stream ended has End set and no Target.
type Result struct {
	Query      string
	Confidence float64
	Target     Target
	End        bool
}

// Feed runs a Session on its own goroutine and delivers results over a
// channel. The channel is unbuffered: the pipe is not read again until the
// consumer took the current batch.
//
// Append, Refresh and Close are synchronous cancellations. Once they return,
// nothing produced for the previous query is sent on Results.
type Feed struct {
	mu      sync.Mutex
	sess    *Session
	pending []Result
	stale   chan struct{}

	// sendMu is held for the whole of a send so cancellation can wait for
	// an in-flight send to give up.
	sendMu sync.Mutex

	poll      time.Duration
	kick      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	out       chan Result
	closeOnce sync.Once
}

// NewFeed creates a Feed over a new Session and starts its worker.
func NewFeed(src Source, opts Options) *Feed {
	f := &Feed{
		stale:   make(chan struct{}),
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		out:     make(chan Result),
	}
	f.sess = New(src, f.collect, opts)
	f.poll = f.sess.opts.PollInterval

	go f.run()
	return f
}

// Results returns the delivery channel. It is closed after Close.
func (f *Feed) Results() <-chan Result {
	return f.out
}

// ID returns the underlying session id.
func (f *Feed) ID() string {
	return f.sess.ID()
}

// Query returns the accumulated query.
func (f *Feed) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess.Query()
}

// State returns the underlying session state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess.State()
}

// Stats returns the underlying session counters.
func (f *Feed) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess.Stats()
}

// Append extends the query, see Session.Append.
func (f *Feed) Append(ctx context.Context, fragment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sess.State() == Closed || fragment == "" {
		return f.sess.Append(ctx, fragment)
	}
	if err := f.sess.src.Check(); err != nil {
		return err
	}

	f.invalidate()
	err := f.sess.Append(ctx, fragment)
	f.wake()
	return err
}

// Refresh reruns the current query, see Session.Refresh.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sess.State() == Closed || f.sess.Query() == "" {
		return f.sess.Refresh(ctx)
	}
	if err := f.sess.src.Check(); err != nil {
		return err
	}

	f.invalidate()
	err := f.sess.Refresh(ctx)
	f.wake()
	return err
}

// Close stops the search and the worker, then closes Results.
func (f *Feed) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		close(f.stale)
		f.sendMu.Lock()
		f.sendMu.Unlock()
		_ = f.sess.Close()
		close(f.done)
		f.mu.Unlock()
	})
	<-f.stopped
	return nil
}

// invalidate retires the current generation and waits until no send for it
// is in progress. Callers hold mu.
func (f *Feed) invalidate() {
	close(f.stale)
	f.sendMu.Lock()
	f.sendMu.Unlock()
	f.stale = make(chan struct{})
}

func (f *Feed) wake() {
	select {
	case f.kick <- struct{}{}:
	default:
	}
}

// collect is the session callback; it runs under mu inside Pump.
func (f *Feed) collect(s *Session, confidence float64, t Target) {
	f.pending = append(f.pending, Result{Query: s.Query(), Confidence: confidence, Target: t})
}

func (f *Feed) run() {
	defer close(f.stopped)
	defer close(f.out)

	for {
		f.mu.Lock()
		state := f.sess.State()
		stream := f.sess.stream
		stale := f.stale
		f.mu.Unlock()

		switch state {
		case Closed:
			return
		case Empty, Draining:
			select {
			case <-f.kick:
				continue
			case <-f.done:
				return
			}
		}

		if !stream.WaitReady(f.poll) {
			select {
			case <-f.done:
				return
			default:
				continue
			}
		}

		f.mu.Lock()
		if f.stale != stale || f.sess.State() != Querying {
			f.mu.Unlock()
			continue
		}
		f.pending = f.pending[:0]
		_, _ = f.sess.Pump()
		batch := append([]Result(nil), f.pending...)
		if f.sess.State() == Draining {
			batch = append(batch, Result{Query: f.sess.Query(), End: true})
		}
		f.mu.Unlock()

		for _, r := range batch {
			if !f.send(r, stale) {
				break
			}
		}
	}
}

// send delivers r unless its generation was retired or the feed closed.
func (f *Feed) send(r Result, stale <-chan struct{}) bool {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()

	select {
	case <-stale:
		return false
	case <-f.done:
		return false
	default:
	}

	select {
	case f.out <- r:
		return true
	case <-stale:
		return false
	case <-f.done:
		return false
	}
}
