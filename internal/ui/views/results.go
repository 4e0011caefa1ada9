package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cyclone1070/locatecat/internal/score"
	"github.com/Cyclone1070/locatecat/internal/ui/models"
)

// RenderResults renders at most height rows, scrolled so the selection is
// visible.
func RenderResults(s models.State, st Styles, height int) string {
	switch {
	case !s.Available:
		return st.Error.Render("The file index is not available. Check that locate is installed and its database exists.")
	case s.Query == "":
		return st.Dim.Render("Type to search the file index.")
	case len(s.Rows) == 0 && s.Streaming:
		return st.Dim.Render("Searching…")
	case len(s.Rows) == 0:
		return st.Dim.Render("No matches.")
	}

	if height <= 0 {
		height = len(s.Rows)
	}
	start, end := window(len(s.Rows), s.Selected, height)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, renderRow(s.Query, s.Rows[i], i == s.Selected, st))
	}
	return strings.Join(lines, "\n")
}

func renderRow(query string, r models.Row, selected bool, st Styles) string {
	cursor := "  "
	base := lipgloss.NewStyle()
	if selected {
		cursor = st.Cursor.Render("▸ ")
		base = st.Selected
	}
	conf := st.Dim.Render(fmt.Sprintf(" %.2f", r.Confidence))
	return cursor + HighlightMatches(query, r.Target.Path, base, st.Match) + conf
}

// HighlightMatches renders every case-insensitive occurrence of query in s
// with match and the rest with base.
func HighlightMatches(query, s string, base, match lipgloss.Style) string {
	ranges := score.MatchRanges(query, s)
	if len(ranges) == 0 {
		return base.Render(s)
	}

	var sb strings.Builder
	last := 0
	for _, r := range ranges {
		if r[0] > last {
			sb.WriteString(base.Render(s[last:r[0]]))
		}
		sb.WriteString(match.Render(s[r[0]:r[1]]))
		last = r[1]
	}
	if last < len(s) {
		sb.WriteString(base.Render(s[last:]))
	}
	return sb.String()
}

// window returns the [start, end) slice of n rows of the given height that
// keeps sel visible.
func window(n, sel, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := max(sel-height+1, 0)
	return start, start + height
}
