package propkey

import (
	"fmt"
	"strings"
)

const wildcard = "*"

// Segment is one dot-delimited token of a property pattern.
type Segment struct {
	Text     string
	Wildcard bool
}

func (s Segment) String() string { return s.Text }

// Pattern is a parsed source property path such as
// "management.metrics.binders.*.enabled".
type Pattern []Segment

func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.Text
	}
	return strings.Join(parts, ".")
}

// Segments splits a document key into its logical property segments.
// "a.b.c" yields three segments. A '*' inside a document key is literal.
func Segments(key string) ([]string, error) {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidKey, key)
		}
	}
	return parts, nil
}

// ParsePattern parses a dotted source path. A segment equal to "*" matches
// exactly one property segment.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPattern)
	}
	parts := strings.Split(s, ".")
	out := make(Pattern, 0, len(parts))
	for i, p := range parts {
		switch {
		case p == "":
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, s)
		case p == wildcard:
			if i > 0 && parts[i-1] == wildcard {
				return nil, fmt.Errorf("%w: %q has consecutive wildcards", ErrInvalidPattern, s)
			}
			out = append(out, Segment{Text: p, Wildcard: true})
		case strings.Contains(p, wildcard):
			return nil, fmt.Errorf("%w: %q: only whole-segment '*' is supported", ErrInvalidPattern, s)
		default:
			out = append(out, Segment{Text: p})
		}
	}
	return out, nil
}

// ParseTarget parses the dotted path a matched key is renamed to.
// Targets are literal; wildcards are rejected.
func ParseTarget(s string) ([]string, error) {
	p, err := ParsePattern(s)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(p))
	for i, seg := range p {
		if seg.Wildcard {
			return nil, fmt.Errorf("%w: target %q must not contain wildcards", ErrInvalidPattern, s)
		}
		out[i] = seg.Text
	}
	return out, nil
}

func joinSegments(segs []string) string {
	return strings.Join(segs, ".")
}
