package ui

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cyclone1070/locatecat/internal/catalog"
	"github.com/Cyclone1070/locatecat/internal/catalog/locate"
	"github.com/Cyclone1070/locatecat/internal/score"
	"github.com/Cyclone1070/locatecat/internal/session"
	"github.com/Cyclone1070/locatecat/internal/ui/models"
	"github.com/Cyclone1070/locatecat/internal/ui/services"
	"github.com/Cyclone1070/locatecat/internal/ui/views"
)

// DefaultMaxResults caps the rows kept on screen.
const DefaultMaxResults = 200

const detailsHeight = 8

// FeedFactory creates result feeds. catalog.Catalog satisfies it.
type FeedFactory interface {
	NewFeed() *session.Feed
}

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// Options configure the model.
type Options struct {
	// Available is the result of the catalog's availability probe. When
	// false, typing does not start searches.
	Available  bool
	MaxResults int
	// Styles defaults to views.DefaultStyles.
	Styles *views.Styles
	// Updater, when set, lets ctrl+u rebuild the index.
	Updater catalog.Updater
}

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state models.State

	// Dependencies
	ctx      context.Context
	feeds    FeedFactory
	updater  catalog.Updater
	renderer services.MarkdownRenderer
	styles   views.Styles

	maxResults int

	// feed serves state.Query; nil when the query is empty.
	feed   *session.Feed
	chosen string
}

// newBubbleTeaModel creates a new Bubble Tea model
func newBubbleTeaModel(
	ctx context.Context,
	feeds FeedFactory,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	opts Options,
) BubbleTeaModel {
	ti := textinput.New()
	ti.Placeholder = "Search files..."
	ti.Prompt = "› "
	ti.Focus()

	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	styles := views.DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	return BubbleTeaModel{
		state: models.State{
			Input:     ti,
			Spinner:   spinnerFactory(),
			Details:   viewport.New(80, detailsHeight),
			Available: opts.Available,
		},
		ctx:        ctx,
		feeds:      feeds,
		updater:    opts.Updater,
		renderer:   renderer,
		styles:     styles,
		maxResults: opts.MaxResults,
	}
}

// Internal messages

// resultMsg carries one delivery together with the feed it came from, so
// deliveries from a replaced feed can be told apart.
type resultMsg struct {
	feed   *session.Feed
	result session.Result
	ok     bool
}

type indexChangedMsg struct{}

type updateStartedMsg struct {
	err error
}

// Init initializes the model
func (m BubbleTeaModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
	)
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state, m.styles)
}

// Chosen returns the path picked with enter, or "".
func (m BubbleTeaModel) Chosen() string {
	return m.chosen
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Input.Width = max(msg.Width-8, 10)
		m.state.Details.Width = msg.Width
		m.updateDetails()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case resultMsg:
		return m.handleResult(msg)

	case indexChangedMsg:
		return m.handleIndexChanged()

	case updateStartedMsg:
		m.state.StatusIsError = msg.err != nil
		switch {
		case errors.Is(msg.err, locate.ErrUpdateThrottled):
			m.state.StatusMessage = "Index was rebuilt recently"
		case msg.err != nil:
			m.state.StatusMessage = msg.err.Error()
		default:
			m.state.StatusMessage = "Rebuilding index..."
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleKeyPress handles keyboard input
func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeFeed()
		return m, tea.Quit

	case "enter":
		if row, ok := m.state.SelectedRow(); ok {
			m.chosen = row.Target.Path
			m.closeFeed()
			return m, tea.Quit
		}
		return m, nil

	case "up", "ctrl+p":
		if m.state.Selected > 0 {
			m.state.Selected--
			m.updateDetails()
		}
		return m, nil

	case "down", "ctrl+n":
		if m.state.Selected < len(m.state.Rows)-1 {
			m.state.Selected++
			m.updateDetails()
		}
		return m, nil

	case "tab":
		m.state.ShowDetails = !m.state.ShowDetails
		m.updateDetails()
		return m, nil

	case "ctrl+u":
		return m, m.startUpdate()
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m.requery(cmd)
}

// requery follows the input box. Typing at the end extends the running
// feed; any other edit replaces it.
func (m BubbleTeaModel) requery(inputCmd tea.Cmd) (tea.Model, tea.Cmd) {
	q := m.state.Input.Value()
	if q == m.state.Query || !m.state.Available {
		return m, inputCmd
	}

	prev := m.state.Query
	m.state.Query = q
	m.clearRows()
	m.state.StatusMessage = ""
	m.state.StatusIsError = false

	if m.feed != nil && prev != "" && strings.HasPrefix(q, prev) {
		if err := m.feed.Append(m.ctx, q[len(prev):]); err != nil {
			m.fail(err)
			return m, inputCmd
		}
		m.state.Streaming = true
		return m, inputCmd
	}

	m.closeFeed()
	if q == "" {
		return m, inputCmd
	}

	feed := m.feeds.NewFeed()
	if err := feed.Append(m.ctx, q); err != nil {
		_ = feed.Close()
		m.fail(err)
		return m, inputCmd
	}
	m.feed = feed
	m.state.Streaming = true
	return m, tea.Batch(inputCmd, listenForResults(feed))
}

func (m BubbleTeaModel) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	if msg.feed != m.feed || !msg.ok {
		return m, nil
	}

	next := listenForResults(msg.feed)
	r := msg.result
	if r.Query != m.state.Query {
		return m, next
	}
	if r.End {
		m.state.Streaming = false
		return m, next
	}

	m.addRow(models.Row{Target: r.Target, Confidence: r.Confidence})
	return m, next
}

func (m BubbleTeaModel) handleIndexChanged() (tea.Model, tea.Cmd) {
	if m.feed == nil {
		return m, nil
	}
	if err := m.feed.Refresh(m.ctx); err != nil {
		m.fail(err)
		return m, nil
	}
	m.clearRows()
	m.state.Streaming = true
	m.state.StatusMessage = "Index changed, results refreshed"
	m.state.StatusIsError = false
	return m, nil
}

func (m BubbleTeaModel) startUpdate() tea.Cmd {
	if m.updater == nil {
		return nil
	}
	ctx, updater := m.ctx, m.updater
	return func() tea.Msg {
		return updateStartedMsg{err: updater.Update(ctx)}
	}
}

// addRow inserts r in rank order and drops whatever falls past the cap.
// A path already on screen is skipped; a delivery taken off the feed just
// before a refresh may repeat one.
func (m *BubbleTeaModel) addRow(r models.Row) {
	c := score.Candidate{Path: r.Target.Path, Confidence: r.Confidence}
	rows := m.state.Rows
	for _, existing := range rows {
		if existing.Target.Path == r.Target.Path {
			return
		}
	}
	i := sort.Search(len(rows), func(i int) bool {
		return score.Less(c, score.Candidate{Path: rows[i].Target.Path, Confidence: rows[i].Confidence})
	})
	if i >= m.maxResults {
		return
	}

	rows = append(rows, models.Row{})
	copy(rows[i+1:], rows[i:])
	rows[i] = r
	if len(rows) > m.maxResults {
		rows = rows[:m.maxResults]
	}
	m.state.Rows = rows
	m.updateDetails()
}

func (m *BubbleTeaModel) clearRows() {
	m.state.Rows = nil
	m.state.Selected = 0
	m.updateDetails()
}

func (m *BubbleTeaModel) fail(err error) {
	m.closeFeed()
	m.state.StatusMessage = err.Error()
	m.state.StatusIsError = true
}

func (m *BubbleTeaModel) closeFeed() {
	if m.feed == nil {
		return
	}
	_ = m.feed.Close()
	m.feed = nil
	m.state.Streaming = false
}

// updateDetails refreshes the details viewport for the selected row.
func (m *BubbleTeaModel) updateDetails() {
	if !m.state.ShowDetails {
		return
	}
	m.state.Details.SetContent(views.DetailsContent(m.state, m.renderer, m.state.Details.Width))
	m.state.Details.GotoTop()
}

// listenForResults waits for the next delivery of feed.
func listenForResults(feed *session.Feed) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-feed.Results()
		return resultMsg{feed: feed, result: r, ok: ok}
	}
}
