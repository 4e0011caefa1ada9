package services

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/locatecat/internal/session"
)

// TargetMarkdown describes a result as a markdown document for the details
// pane.
func TargetMarkdown(t session.Target, confidence float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escape(t.Name))
	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Path | `%s` |\n", t.Path)
	fmt.Fprintf(&sb, "| URL | %s |\n", escape(t.URL))
	mime := t.MimeType
	if mime == "" {
		mime = "unknown"
	}
	fmt.Fprintf(&sb, "| Type | %s |\n", escape(mime))
	fmt.Fprintf(&sb, "| Confidence | %.2f |\n", confidence)
	return sb.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`#`, `\#`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
