package models

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Cyclone1070/locatecat/internal/session"
)

// Row is one ranked result on screen.
type Row struct {
	Target     session.Target
	Confidence float64
}

// State holds everything the views need to draw a frame.
type State struct {
	Input   textinput.Model
	Spinner spinner.Model
	Details viewport.Model

	// Query is the text the current results belong to.
	Query     string
	Rows      []Row
	Selected  int
	Streaming bool

	ShowDetails bool

	// Available is false when the index cannot be searched at all.
	Available bool

	StatusMessage string
	StatusIsError bool

	Width  int
	Height int
}

// SelectedRow returns the highlighted row, if any.
func (s State) SelectedRow() (Row, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Rows) {
		return Row{}, false
	}
	return s.Rows[s.Selected], true
}
