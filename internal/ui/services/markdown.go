package services

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer turns markdown into terminal output wrapped at width.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour. Term renderers are built
// lazily and kept per wrap width.
type GlamourRenderer struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewGlamourRenderer returns a renderer using the dark standard style.
func NewGlamourRenderer() *GlamourRenderer {
	return NewGlamourRendererWithStyle("dark")
}

// NewGlamourRendererWithStyle returns a renderer using one of glamour's
// standard styles ("dark", "light", "notty", ...).
func NewGlamourRendererWithStyle(style string) *GlamourRenderer {
	return &GlamourRenderer{
		style:     style,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Render implements MarkdownRenderer.
func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(g.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		g.renderers[width] = r
	}
	return r.Render(content)
}

// RenderMarkdown renders content with r, falling back to the raw markdown
// when there is no renderer, no width, or rendering fails.
func RenderMarkdown(r MarkdownRenderer, content string, width int) string {
	if r == nil || width <= 0 {
		return content
	}
	out, err := r.Render(content, width)
	if err != nil {
		return content
	}
	return out
}
