package score

import (
	"strings"
	"unicode/utf8"
)

// MatchRanges returns the byte ranges [start, end) of the non-overlapping
// case-insensitive occurrences of query in s.
func MatchRanges(query, s string) [][2]int {
	if query == "" {
		return nil
	}
	var out [][2]int
	for i := 0; i+len(query) <= len(s); {
		if strings.EqualFold(s[i:i+len(query)], query) {
			out = append(out, [2]int{i, i + len(query)})
			i += len(query)
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return out
}

// Highlight passes every occurrence of query in s through mark and returns
// the rebuilt string. Text outside the matches is copied as is.
func Highlight(query, s string, mark func(string) string) string {
	ranges := MatchRanges(query, s)
	if len(ranges) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, r := range ranges {
		b.WriteString(s[last:r[0]])
		b.WriteString(mark(s[r[0]:r[1]]))
		last = r[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
