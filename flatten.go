package propkey

import (
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// Link is one mapping entry on the way from the document root to a
// candidate's value.
type Link struct {
	Container *yaml.Node // mapping holding the entry
	Key       *yaml.Node // key node of the entry
	Segments  []string   // logical segments of Key.Value
}

// Candidate is a logical property path found in a document together with
// the chain of entries that spell it.
type Candidate struct {
	Path  []string
	Chain []Link
	// Split is how many segments of the last link's key belong to Path.
	// It is smaller than the key's segment count when Path ends inside a
	// composite key.
	Split int
}

// Leaf returns the link holding the candidate's value.
func (c Candidate) Leaf() Link {
	return c.Chain[len(c.Chain)-1]
}

// Value returns the node the candidate's last key maps to.
func (c Candidate) Value() *yaml.Node {
	l := c.Leaf()
	return valueOf(l.Container, l.Key)
}

// Remainder returns the trailing segments of the last key that are not part
// of Path.
func (c Candidate) Remainder() []string {
	return c.Leaf().Segments[c.Split:]
}

// widths returns, per link, how many segments of Path it contributes.
func (c Candidate) widths() []int {
	out := make([]int, len(c.Chain))
	for i, l := range c.Chain {
		out[i] = len(l.Segments)
	}
	out[len(out)-1] = c.Split
	return out
}

// Candidates walks root in document order and yields every logical property
// path it contains. Composite keys produce one candidate per segment
// boundary, so "a.b.c: 1" yields a.b, a.b.c and, when nested under x, x.a
// and so on. Sequence items are never descended into. A malformed key stops
// the walk with an error wrapping ErrInvalidKey.
func Candidates(root *yaml.Node) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		m := mappingRoot(root)
		if m == nil {
			return
		}
		walkCandidates(m, nil, nil, yield)
	}
}

func walkCandidates(m *yaml.Node, path []string, chain []Link, yield func(Candidate, error) bool) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			yield(Candidate{}, fmt.Errorf("%w: non-scalar key at line %d", ErrInvalidKey, k.Line))
			return false
		}
		segs, err := Segments(k.Value)
		if err != nil {
			yield(Candidate{}, fmt.Errorf("line %d: %w", k.Line, err))
			return false
		}
		link := Link{Container: m, Key: k, Segments: segs}
		nextChain := append(chain[:len(chain):len(chain)], link)
		for split := 1; split <= len(segs); split++ {
			c := Candidate{
				Path:  concat(path, segs[:split]),
				Chain: nextChain,
				Split: split,
			}
			if !yield(c, nil) {
				return false
			}
		}
		if v.Kind == yaml.MappingNode {
			if !walkCandidates(v, concat(path, segs), nextChain, yield) {
				return false
			}
		}
	}
	return true
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
