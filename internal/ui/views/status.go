package views

import (
	"fmt"

	"github.com/Cyclone1070/locatecat/internal/ui/models"
)

const keyHints = "↑/↓ select · enter open · tab details · ctrl+u reindex · esc quit"

// RenderStatus renders the status bar
func RenderStatus(s models.State, st Styles) string {
	var left string
	switch {
	case s.StatusMessage != "" && s.StatusIsError:
		left = st.Error.Render("✗ " + s.StatusMessage)
	case s.StatusMessage != "":
		left = st.Status.Render(s.StatusMessage)
	case s.Streaming:
		left = st.Status.Render(fmt.Sprintf("%s %d results", s.Spinner.View(), len(s.Rows)))
	case s.Query != "":
		left = st.Status.Render(fmt.Sprintf("✔ %d results", len(s.Rows)))
	default:
		left = st.Status.Render("Ready")
	}
	return fmt.Sprintf("%s  %s", left, st.Dim.Render(keyHints))
}
