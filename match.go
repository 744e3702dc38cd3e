package propkey

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// MatchSegment reports whether a single candidate segment satisfies a
// pattern segment. With relaxed binding, kebab-case, snake_case and
// camelCase spellings of the same words are equal.
func MatchSegment(p Segment, candidate string, relaxed bool) bool {
	if p.Wildcard {
		return true
	}
	if p.Text == candidate {
		return true
	}
	if !relaxed {
		return false
	}
	return normalize(p.Text) == normalize(candidate)
}

// Matches reports whether path has the same length as p and every segment
// matches positionally.
func (p Pattern) Matches(path []string, relaxed bool) bool {
	if len(path) != len(p) {
		return false
	}
	for i, seg := range p {
		if !MatchSegment(seg, path[i], relaxed) {
			return false
		}
	}
	return true
}

// normalize folds a segment to lower snake_case: "first-name", "first_name"
// and "firstName" all become "first_name". Spaces and letter/digit
// boundaries also start a new word, so "v1" and "v-1" fold alike.
func normalize(s string) string {
	return strings.ToLower(strcase.ToSnake(s))
}
