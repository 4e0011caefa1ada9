package views

import (
	"github.com/Cyclone1070/locatecat/internal/ui/models"
	"github.com/Cyclone1070/locatecat/internal/ui/services"
)

// DetailsContent renders the selected row as markdown for the details
// viewport. It returns "" when nothing is selected.
func DetailsContent(s models.State, renderer services.MarkdownRenderer, width int) string {
	row, ok := s.SelectedRow()
	if !ok {
		return ""
	}
	return services.RenderMarkdown(renderer, services.TargetMarkdown(row.Target, row.Confidence), width)
}

// RenderDetails renders the details viewport when it is shown.
func RenderDetails(s models.State, st Styles) string {
	if !s.ShowDetails {
		return ""
	}
	if _, ok := s.SelectedRow(); !ok {
		return ""
	}
	return st.Details.Render(s.Details.View())
}
