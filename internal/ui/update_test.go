package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/locatecat/internal/catalog/locate"
	"github.com/Cyclone1070/locatecat/internal/process"
	"github.com/Cyclone1070/locatecat/internal/session"
	"github.com/Cyclone1070/locatecat/internal/ui/models"
)

func createTestModel(feeds *fakeFeeds, opts Options) BubbleTeaModel {
	return newBubbleTeaModel(context.Background(), feeds, &MockMarkdownRenderer{}, mockSpinnerFactory, opts)
}

func update(t *testing.T, m BubbleTeaModel, msg tea.Msg) (BubbleTeaModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(BubbleTeaModel), cmd
}

func typeText(t *testing.T, m BubbleTeaModel, text string) BubbleTeaModel {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// drain feeds the model every delivery of its current feed until the query
// finished streaming.
func drain(t *testing.T, m BubbleTeaModel) BubbleTeaModel {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for m.state.Streaming {
		msgs := make(chan tea.Msg, 1)
		go func(feed *session.Feed) { msgs <- listenForResults(feed)() }(m.feed)
		select {
		case msg := <-msgs:
			m, _ = update(t, m, msg)
		case <-deadline:
			t.Fatal("timed out waiting for results")
		}
	}
	return m
}

func paths(rows []models.Row) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Target.Path)
	}
	return out
}

func TestInit_ReturnsCommands(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true})
	assert.NotNil(t, m.Init())
}

func TestTyping_ExtendsRunningFeed(t *testing.T) {
	feeds := &fakeFeeds{results: map[string][]string{"sh": {"/usr/bin/shutdown", "/bin/sh"}}}
	m := createTestModel(feeds, Options{Available: true})
	defer m.closeFeed()

	m = typeText(t, m, "sh")

	require.Len(t, feeds.created(), 1)
	assert.Equal(t, "sh", m.feed.Query())
	assert.Equal(t, "sh", m.state.Query)
	assert.True(t, m.state.Streaming)

	m = drain(t, m)

	assert.Equal(t, []string{"/bin/sh", "/usr/bin/shutdown"}, paths(m.state.Rows))
	assert.Equal(t, 1.0, m.state.Rows[0].Confidence)
}

func TestTyping_EditReplacesFeed(t *testing.T) {
	feeds := &fakeFeeds{}
	m := createTestModel(feeds, Options{Available: true})
	defer m.closeFeed()

	m = typeText(t, m, "sh")
	first := m.feed

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})

	require.Len(t, feeds.created(), 2)
	assert.Equal(t, session.Closed, first.State())
	assert.Equal(t, "s", m.feed.Query())
}

func TestTyping_ClearingQueryStopsSearch(t *testing.T) {
	feeds := &fakeFeeds{}
	m := createTestModel(feeds, Options{Available: true})

	m = typeText(t, m, "s")
	first := m.feed
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Nil(t, m.feed)
	assert.Equal(t, session.Closed, first.State())
	assert.False(t, m.state.Streaming)
	assert.Empty(t, m.state.Query)
}

func TestTyping_Unavailable(t *testing.T) {
	feeds := &fakeFeeds{}
	m := createTestModel(feeds, Options{Available: false})

	m = typeText(t, m, "sh")

	assert.Empty(t, feeds.created())
	assert.Equal(t, "sh", m.state.Input.Value())
	assert.Nil(t, m.feed)
}

func TestTyping_SpawnError(t *testing.T) {
	feeds := &fakeFeeds{checkErr: &process.SpawnError{Cmd: "locate", Cause: errors.New("not found")}}
	m := createTestModel(feeds, Options{Available: true})

	m = typeText(t, m, "s")

	assert.Nil(t, m.feed)
	assert.True(t, m.state.StatusIsError)
	assert.Contains(t, m.state.StatusMessage, "locate")
	assert.Equal(t, session.Closed, feeds.created()[0].State())
}

func TestResult_IgnoresReplacedFeed(t *testing.T) {
	feeds := &fakeFeeds{}
	m := createTestModel(feeds, Options{Available: true})
	defer m.closeFeed()
	m = typeText(t, m, "a")

	other := feeds.NewFeed()
	defer other.Close()

	m, cmd := update(t, m, resultMsg{
		feed:   other,
		ok:     true,
		result: session.Result{Query: "a", Confidence: 1, Target: session.NewTarget("/a")},
	})

	assert.Empty(t, m.state.Rows)
	assert.Nil(t, cmd, "a replaced feed is not listened to again")
}

func TestResult_IgnoresStaleQuery(t *testing.T) {
	feeds := &fakeFeeds{}
	m := createTestModel(feeds, Options{Available: true})
	defer m.closeFeed()
	m = typeText(t, m, "ab")

	m, cmd := update(t, m, resultMsg{
		feed:   m.feed,
		ok:     true,
		result: session.Result{Query: "a", Confidence: 1, Target: session.NewTarget("/a")},
	})

	assert.Empty(t, m.state.Rows)
	assert.NotNil(t, cmd)
}

func TestResult_EndStopsStreaming(t *testing.T) {
	feeds := &fakeFeeds{}
	m := createTestModel(feeds, Options{Available: true})
	defer m.closeFeed()
	m = typeText(t, m, "a")

	m, _ = update(t, m, resultMsg{feed: m.feed, ok: true, result: session.Result{Query: "a", End: true}})

	assert.False(t, m.state.Streaming)
}

func TestAddRow_RanksAndCaps(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true, MaxResults: 2})

	m.addRow(models.Row{Target: session.NewTarget("/b/long"), Confidence: 0.5})
	m.addRow(models.Row{Target: session.NewTarget("/a"), Confidence: 0.9})
	m.addRow(models.Row{Target: session.NewTarget("/b"), Confidence: 0.5})
	m.addRow(models.Row{Target: session.NewTarget("/c"), Confidence: 0.1})
	m.addRow(models.Row{Target: session.NewTarget("/a"), Confidence: 0.9})

	assert.Equal(t, []string{"/a", "/b"}, paths(m.state.Rows))
}

func TestKeys_Navigation(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true})
	m.state.Rows = []models.Row{
		{Target: session.NewTarget("/a.png"), Confidence: 1},
		{Target: session.NewTarget("/b.png"), Confidence: 0.5},
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.state.Selected)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.state.Selected)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.state.ShowDetails)
	assert.Contains(t, m.state.Details.View(), "b.png")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Contains(t, m.state.Details.View(), "a.png")
}

func TestKeys_EnterChoosesSelection(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "nothing to choose")

	m.state.Rows = []models.Row{{Target: session.NewTarget("/etc/hosts"), Confidence: 1}}
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "/etc/hosts", m.Chosen())
}

func TestKeys_EscClosesFeed(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true})
	m = typeText(t, m, "x")
	feed := m.feed

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, session.Closed, feed.State())
	assert.Empty(t, m.Chosen())
}

func TestIndexChanged_RefreshesQuery(t *testing.T) {
	feeds := &fakeFeeds{results: map[string][]string{"doc": {"/doc"}}}
	m := createTestModel(feeds, Options{Available: true})
	defer m.closeFeed()

	m = drain(t, typeText(t, m, "doc"))
	require.Len(t, m.state.Rows, 1)
	spawns := m.feed.Stats().Spawns

	m, _ = update(t, m, indexChangedMsg{})

	assert.Empty(t, m.state.Rows)
	assert.True(t, m.state.Streaming)
	assert.Equal(t, spawns+1, m.feed.Stats().Spawns)

	m = drain(t, m)
	assert.Equal(t, []string{"/doc"}, paths(m.state.Rows))
}

func TestIndexChanged_NoQuery(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true})

	m, cmd := update(t, m, indexChangedMsg{})

	assert.Nil(t, cmd)
	assert.False(t, m.state.Streaming)
}

func TestKeys_UpdateIndex(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    string
		isError bool
	}{
		{"Started", nil, "Rebuilding index...", false},
		{"Throttled", locate.ErrUpdateThrottled, "Index was rebuilt recently", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &fakeUpdater{err: tt.err}
			m := createTestModel(&fakeFeeds{}, Options{Available: true, Updater: u})

			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
			require.NotNil(t, cmd)
			m, _ = update(t, m, cmd())

			assert.Equal(t, 1, u.calls)
			assert.Equal(t, tt.want, m.state.StatusMessage)
			assert.Equal(t, tt.isError, m.state.StatusIsError)
		})
	}
}

func TestKeys_UpdateWithoutUpdater(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})

	assert.Nil(t, cmd)
}

func TestWindowSize(t *testing.T) {
	m := createTestModel(&fakeFeeds{}, Options{Available: true})

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, 100, m.state.Width)
	assert.Equal(t, 30, m.state.Height)
	assert.Equal(t, 100, m.state.Details.Width)
	assert.NotEmpty(t, m.View())
}
