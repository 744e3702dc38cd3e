package propkey

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrNotMapping is returned when the node handed to Rewrite is neither a
// mapping nor a document whose content is a mapping.
var ErrNotMapping = errors.New("propkey: top-level YAML must be a mapping")

// Options configures a single key rename.
type Options struct {
	// Source is the dotted property path to look for. A "*" segment matches
	// any single segment.
	Source string
	// Target is the dotted property path the matched value moves to.
	Target string
	// Relaxed enables relaxed binding: kebab-case, snake_case and camelCase
	// spellings of a segment are treated as equal.
	Relaxed bool
}

// Rewrite renames every property matching opts.Source under root to
// opts.Target. root may be a document node or a mapping node.
//
// It reports whether the tree changed. On error root is left exactly as it
// was: edits are staged on a copy and committed only when every match has
// been relocated and every alias still follows its anchor.
func Rewrite(root *yaml.Node, opts Options) (bool, error) {
	r, err := newRewriter(opts)
	if err != nil {
		return false, err
	}
	if isEmptyDocument(root) {
		return false, nil
	}
	m := mappingRoot(root)
	if m == nil {
		return false, ErrNotMapping
	}
	work, changed, err := r.stage(m)
	if err != nil || !changed {
		return false, err
	}
	*m = *work
	return true, nil
}

// RewriteDocument applies Rewrite to every YAML document in doc. Either all
// documents are rewritten or none are.
func RewriteDocument(doc *Document, opts Options) (bool, error) {
	r, err := newRewriter(opts)
	if err != nil {
		return false, err
	}
	roots := doc.Roots()
	staged := make([]*yaml.Node, len(roots))
	changed := false
	for i, m := range roots {
		work, ok, err := r.stage(m)
		if err != nil {
			return false, fmt.Errorf("document %d: %w", i, err)
		}
		if ok {
			staged[i] = work
			changed = true
		}
	}
	for i, work := range staged {
		if work != nil {
			*roots[i] = *work
		}
	}
	return changed, nil
}

type rewriter struct {
	source  Pattern
	target  []string
	relaxed bool
}

func newRewriter(opts Options) (*rewriter, error) {
	src, err := ParsePattern(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	dst, err := ParseTarget(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	return &rewriter{source: src, target: dst, relaxed: opts.Relaxed}, nil
}

// stage rewrites a copy of m and returns it. The copy is only meaningful when
// changed is true.
func (r *rewriter) stage(m *yaml.Node) (*yaml.Node, bool, error) {
	work := cloneNode(m)
	matches, err := r.collect(work)
	if err != nil || len(matches) == 0 {
		return nil, false, err
	}
	changed := false
	for _, c := range matches {
		taken, err := r.occupied(work, c)
		if err != nil {
			return nil, false, err
		}
		if taken {
			return nil, false, fmt.Errorf("%s: %w: %s already exists", joinSegments(c.Path), ErrDuplicateKey, joinSegments(r.target))
		}
		ok, err := r.relocate(c)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", joinSegments(c.Path), err)
		}
		changed = changed || ok
	}
	if !changed {
		return nil, false, nil
	}
	if a := aliasBeforeAnchor(work); a != nil {
		return nil, false, fmt.Errorf("%w: *%s at line %d", ErrAliasOrder, a.Value, a.Line)
	}
	return work, true, nil
}

// collect walks the whole tree before anything is edited so a malformed key
// anywhere aborts the rewrite with nothing applied.
func (r *rewriter) collect(m *yaml.Node) ([]Candidate, error) {
	var matches []Candidate
	for c, err := range Candidates(m) {
		if err != nil {
			return nil, err
		}
		if r.source.Matches(c.Path, r.relaxed) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// occupied reports whether the target property already exists in m as
// something other than c itself, one of its ancestors or one of its
// descendants. Conflicts with ancestors that survive pruning are caught
// when the new key is placed.
func (r *rewriter) occupied(m *yaml.Node, c Candidate) (bool, error) {
	self := c.Leaf().Key
	onChain := func(key *yaml.Node) bool {
		return slices.ContainsFunc(c.Chain, func(l Link) bool { return l.Key == key })
	}
	for o, err := range Candidates(m) {
		if err != nil {
			return false, err
		}
		if !slices.Equal(o.Path, r.target) || onChain(o.Leaf().Key) {
			continue
		}
		if !slices.ContainsFunc(o.Chain, func(l Link) bool { return l.Key == self }) {
			return true, nil
		}
	}
	return false, nil
}

func (r *rewriter) relocate(c Candidate) (bool, error) {
	if Classify(c) == Linear && len(r.target) >= len(c.Chain) {
		return r.reslice(c), nil
	}
	reused, off := r.reusable(c)
	if reused == len(c.Chain)-1 {
		return r.renameLeaf(c, off)
	}
	return r.rebuild(c, reused, off)
}

// reslice renames every key on a linear chain in place, cutting the target
// into groups as wide as the original keys. Earlier levels give up segments
// when the target is shorter, the last level absorbs whatever is left.
func (r *rewriter) reslice(c Candidate) bool {
	widths := c.widths()
	n := len(widths)
	keys := make([]string, n)
	off := 0
	for i := 0; i < n-1; i++ {
		w := min(widths[i], len(r.target)-off-(n-1-i))
		keys[i] = joinSegments(r.target[off : off+w])
		off += w
	}
	rest := r.target[off:]

	changed := false
	leaf := c.Leaf()
	if len(leaf.Segments) > 1 {
		keys[n-1] = joinSegments(concat(rest, c.Remainder()))
	} else {
		keys[n-1] = rest[0]
		if len(rest) > 1 {
			setValue(leaf.Container, leaf.Key, nestValue(rest[1:], c.Value()))
			changed = true
		}
	}
	for i, l := range c.Chain {
		if l.Key.Value != keys[i] {
			l.Key.Value = keys[i]
			changed = true
		}
	}
	return changed
}

// reusable returns how many ancestor links of c spell a literal prefix of
// the target, and how many target segments they cover. At least one target
// segment is always left over for the entry itself.
func (r *rewriter) reusable(c Candidate) (links, off int) {
	for _, l := range c.Chain[:len(c.Chain)-1] {
		end := off + len(l.Segments)
		if end >= len(r.target) || !slices.Equal(r.target[off:end], l.Segments) {
			break
		}
		links++
		off = end
	}
	return links, off
}

// renameLeaf keeps the entry where it is and only rewrites its key, used
// when every ancestor already matches the target's leading segments.
func (r *rewriter) renameLeaf(c Candidate, off int) (bool, error) {
	leaf := c.Leaf()
	val := c.Value()
	text, v, err := placement(leaf.Container, leaf.Key, r.target[off:], c.Remainder(), val, len(leaf.Segments) > 1)
	if err != nil {
		return false, err
	}
	changed := leaf.Key.Value != text || v != val
	leaf.Key.Value = text
	setValue(leaf.Container, leaf.Key, v)
	return changed, nil
}

// rebuild removes the matched entry, prunes ancestors it leaves empty and
// appends a fresh chain for the target. The first reused links of the chain
// are never pruned: the new entry lands in the deepest of them, or in the
// root when none is reused.
func (r *rewriter) rebuild(c Candidate, reused, off int) (bool, error) {
	chain := c.Chain
	leaf := c.Leaf()
	val := removeEntry(leaf.Container, leaf.Key)

	depth := len(chain) - 1
	for depth > reused && entryCount(chain[depth].Container) == 0 {
		removeEntry(chain[depth-1].Container, chain[depth-1].Key)
		depth--
	}

	anchor := chain[reused].Container
	text, v, err := placement(anchor, nil, r.target[off:], c.Remainder(), val, false)
	if err != nil {
		return false, err
	}
	key := newKey(text)
	copyComments(leaf.Key, key)
	appendEntry(anchor, key, v)
	return true, nil
}

// placement decides the key text and value for segs inside m. Composite
// placement folds all segments into one key. Otherwise the first segment
// becomes the key and the rest nest one level each, unless the first
// segment is already taken by an unrelated entry, in which case the
// segments are folded so the new entry never merges into it.
func placement(m, self *yaml.Node, segs, rem []string, val *yaml.Node, composite bool) (string, *yaml.Node, error) {
	var text string
	v := val
	if composite {
		text = joinSegments(concat(segs, rem))
	} else {
		if len(rem) > 0 {
			inner := newMapping()
			appendEntry(inner, newKey(joinSegments(rem)), val)
			v = inner
		}
		text = segs[0]
		if len(segs) > 1 {
			if hasKeyText(m, text, self) {
				text = joinSegments(segs)
			} else {
				v = nestValue(segs[1:], v)
			}
		}
	}
	if hasKeyText(m, text, self) {
		return "", nil, fmt.Errorf("%w: %q", ErrDuplicateKey, text)
	}
	return text, v, nil
}
