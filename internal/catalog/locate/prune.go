package locate

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// PruneMatcher drops paths matching gitignore-style patterns. Patterns are
// rooted at "/", so "/tmp" only matches the top-level tmp while
// "node_modules/" matches that directory anywhere.
type PruneMatcher struct {
	matcher gitignore.Matcher
}

// NewPruneMatcher returns nil when there are no patterns.
func NewPruneMatcher(patterns []string) *PruneMatcher {
	var parsed []gitignore.Pattern
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed = append(parsed, gitignore.ParsePattern(line, nil))
	}
	if len(parsed) == 0 {
		return nil
	}
	return &PruneMatcher{matcher: gitignore.NewMatcher(parsed)}
}

// Pruned reports whether path matches a pattern. locate cannot tell us
// whether the last element is a directory, so it is matched as a file;
// directory patterns still match everything below the directory.
func (m *PruneMatcher) Pruned(path string) bool {
	if m == nil {
		return false
	}
	segments := splitPath(path)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, false)
}

// Keep is the inverse of Pruned, usable as a session filter.
func (m *PruneMatcher) Keep(path string) bool {
	return !m.Pruned(path)
}

// splitPath splits an absolute path into segments, dropping empty and "."
// elements.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
