package ui

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/Cyclone1070/locatecat/internal/session"
)

type MockMarkdownRenderer struct {
	RenderFunc func(string, int) (string, error)
}

func (m *MockMarkdownRenderer) Render(content string, width int) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(content, width)
	}
	return content, nil
}

func mockSpinnerFactory() spinner.Model {
	return spinner.New()
}

// fakeStream serves its records and then ends.
type fakeStream struct {
	mu      sync.Mutex
	records []string
}

func (s *fakeStream) HasMore() bool { return true }

func (s *fakeStream) NextRecord(dst []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return dst, io.EOF
	}
	rec := s.records[0]
	s.records = s.records[1:]
	return append(dst, rec...), nil
}

func (s *fakeStream) WaitReady(time.Duration) bool { return true }

func (s *fakeStream) Terminate() error { return nil }

// fakeFeeds is a FeedFactory over canned query results.
type fakeFeeds struct {
	mu       sync.Mutex
	results  map[string][]string
	checkErr error
	feeds    []*session.Feed
}

func (f *fakeFeeds) Check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkErr
}

func (f *fakeFeeds) Open(_ context.Context, query string) (session.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &fakeStream{records: append([]string(nil), f.results[query]...)}, nil
}

func (f *fakeFeeds) NewFeed() *session.Feed {
	feed := session.NewFeed(f, session.Options{PollInterval: 5 * time.Millisecond})
	f.mu.Lock()
	f.feeds = append(f.feeds, feed)
	f.mu.Unlock()
	return feed
}

func (f *fakeFeeds) created() []*session.Feed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*session.Feed(nil), f.feeds...)
}

type fakeUpdater struct {
	err   error
	calls int
}

func (u *fakeUpdater) Update(context.Context) error {
	u.calls++
	return u.err
}

func (u *fakeUpdater) UpdateWait(context.Context) error {
	return u.err
}
