// Package score ranks candidate paths against a search query.
//
// Scoring is case-insensitive and pure: the same query and path always give
// the same confidence.
package score

import (
	"sort"
	"strings"
)

// Confidence tiers. Exact matches get MaxConfidence; matches ending the
// final path component fall in (SuffixBase, SuffixBase+SuffixSpan); plain
// substring matches stay below SuffixBase.
const (
	MaxConfidence = 1.0
	SuffixBase    = 0.7
	SuffixSpan    = 0.25

	substringBase     = 0.1
	substringPosition = 0.3
	substringLength   = 0.25
)

// Candidate is a scored path.
type Candidate struct {
	Path       string
	Confidence float64
}

// Score returns how well path matches query, in [0, 1]. ok is false when
// the path does not contain the query at all, or when the query is empty.
func Score(query, path string) (confidence float64, ok bool) {
	if query == "" || path == "" {
		return 0, false
	}

	q := strings.ToLower(query)
	p := strings.ToLower(path)

	idx := strings.Index(p, q)
	if idx < 0 {
		return 0, false
	}

	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		trimmed = p
	}
	if trimmed == q || p == q || basename(trimmed) == q {
		return MaxConfidence, true
	}

	n := float64(len(p))
	ql := float64(len(q))

	if strings.HasSuffix(basename(trimmed), q) {
		return SuffixBase + SuffixSpan*ql/n, true
	}

	return substringBase + substringPosition*(1-float64(idx)/n) + substringLength*ql/n, true
}

// Less orders candidates by descending confidence, then shorter path, then
// lexicographically.
func Less(a, b Candidate) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if len(a.Path) != len(b.Path) {
		return len(a.Path) < len(b.Path)
	}
	return a.Path < b.Path
}

// Sort orders candidates with Less.
func Sort(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool { return Less(c[i], c[j]) })
}

// OrderBatch applies the tie-break to candidates sharing a confidence, in
// place. Candidates with different confidences keep their positions, so the
// emission order of the batch is otherwise preserved.
func OrderBatch(c []Candidate) {
	if len(c) < 2 {
		return
	}

	slots := make(map[float64][]int)
	var order []float64
	for i, cand := range c {
		if _, seen := slots[cand.Confidence]; !seen {
			order = append(order, cand.Confidence)
		}
		slots[cand.Confidence] = append(slots[cand.Confidence], i)
	}

	for _, conf := range order {
		idx := slots[conf]
		if len(idx) < 2 {
			continue
		}
		group := make([]Candidate, len(idx))
		for k, i := range idx {
			group[k] = c[i]
		}
		Sort(group)
		for k, i := range idx {
			c[i] = group[k]
		}
	}
}

func basename(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
