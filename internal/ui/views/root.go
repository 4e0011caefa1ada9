package views

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Cyclone1070/locatecat/internal/ui/models"
)

// chromeHeight is the number of lines taken by the input box and status bar.
const chromeHeight = 4

// RenderRoot renders the complete UI layout
func RenderRoot(s models.State, st Styles) string {
	details := RenderDetails(s, st)

	height := 0
	if s.Height > 0 {
		used := chromeHeight
		if details != "" {
			used += lipgloss.Height(details)
		}
		height = max(s.Height-used, 1)
	}

	sections := []string{
		RenderInput(s, st),
		RenderResults(s, st, height),
	}
	if details != "" {
		sections = append(sections, details)
	}
	sections = append(sections, RenderStatus(s, st))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
