package views

import "github.com/Cyclone1070/locatecat/internal/ui/models"

// RenderInput renders the query box
func RenderInput(s models.State, st Styles) string {
	style := st.Input
	if s.Width > 4 {
		style = style.Width(s.Width - 2)
	}
	return style.Render(s.Input.View())
}
