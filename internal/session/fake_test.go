package session

import (
	"context"
	"io"
	"sync"
	"time"
)

// fakeStream serves queued records. While open it reports no data once the
// queue is empty; after finish it reports the end (or err).
type fakeStream struct {
	mu         sync.Mutex
	query      string
	records    []string
	open       bool
	err        error
	terminated int
}

func (s *fakeStream) push(records ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

func (s *fakeStream) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *fakeStream) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated > 0 || len(s.records) > 0 || !s.open
}

func (s *fakeStream) NextRecord(dst []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated > 0 {
		return dst, io.EOF
	}
	if len(s.records) > 0 {
		rec := s.records[0]
		s.records = s.records[1:]
		return append(dst, rec...), nil
	}
	if s.err != nil {
		return dst, s.err
	}
	return dst, io.EOF
}

func (s *fakeStream) WaitReady(timeout time.Duration) bool {
	if s.HasMore() {
		return true
	}
	time.Sleep(min(timeout, 2*time.Millisecond))
	return s.HasMore()
}

func (s *fakeStream) Terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated++
	return nil
}

func (s *fakeStream) live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated == 0
}

// fakeSource opens a fakeStream per query. results maps a query to the
// records its stream will serve; keepOpen leaves the stream waiting after
// the records were read.
type fakeSource struct {
	mu        sync.Mutex
	results   map[string][]string
	keepOpen  bool
	streamErr error
	checkErr  error
	openErr   error
	streams   []*fakeStream
}

func (f *fakeSource) Check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkErr
}

func (f *fakeSource) Open(_ context.Context, query string) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := &fakeStream{
		query:   query,
		records: append([]string(nil), f.results[query]...),
		open:    f.keepOpen,
		err:     f.streamErr,
	}
	f.streams = append(f.streams, s)
	return s, nil
}

func (f *fakeSource) opened() []*fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeStream(nil), f.streams...)
}

func (f *fakeSource) liveCount() int {
	n := 0
	for _, s := range f.opened() {
		if s.live() {
			n++
		}
	}
	return n
}

type delivery struct {
	confidence float64
	target     Target
}

type recorder struct {
	got []delivery
}

func (r *recorder) callback(_ *Session, confidence float64, t Target) {
	r.got = append(r.got, delivery{confidence: confidence, target: t})
}

func (r *recorder) paths() []string {
	var out []string
	for _, d := range r.got {
		out = append(out, d.target.Path)
	}
	return out
}
