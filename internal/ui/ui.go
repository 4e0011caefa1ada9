package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cyclone1070/locatecat/internal/ui/services"
)

// UI runs the interactive search front-end.
type UI struct {
	program *tea.Program
}

// NewUI creates a new Bubble Tea UI over feeds. ctx bounds the searches it
// starts and the program itself.
func NewUI(
	ctx context.Context,
	feeds FeedFactory,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	opts Options,
) *UI {
	model := newBubbleTeaModel(ctx, feeds, renderer, spinnerFactory, opts)
	return &UI{
		program: tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)),
	}
}

// Start runs the program until the user quits and returns the chosen path,
// or "" when nothing was chosen.
func (u *UI) Start() (string, error) {
	final, err := u.program.Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(BubbleTeaModel); ok {
		return m.Chosen(), nil
	}
	return "", nil
}

// IndexChanged tells the UI the index was rebuilt so the current query is
// run again. It is safe to call from any goroutine.
func (u *UI) IndexChanged() {
	u.program.Send(indexChangedMsg{})
}
