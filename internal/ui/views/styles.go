package views

import "github.com/charmbracelet/lipgloss"

// Styles is the palette every view draws with.
type Styles struct {
	Input    lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Match    lipgloss.Style
	Dim      lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Details  lipgloss.Style
}

// NewStyles builds the palette from three colors, each an ANSI index or a
// hex value as lipgloss accepts them.
func NewStyles(primary, match, dim string) Styles {
	p := lipgloss.Color(primary)
	return Styles{
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p).
			Padding(0, 1),
		Cursor:   lipgloss.NewStyle().Foreground(p).Bold(true),
		Selected: lipgloss.NewStyle().Bold(true),
		Match:    lipgloss.NewStyle().Foreground(lipgloss.Color(match)).Bold(true),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(dim)),
		Status:   lipgloss.NewStyle().Foreground(p),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Details: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color(dim)),
	}
}

// DefaultStyles matches the default UI colors.
func DefaultStyles() Styles {
	return NewStyles("63", "212", "241")
}
