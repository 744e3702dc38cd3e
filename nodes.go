package propkey

import (
	"gopkg.in/yaml.v3"
)

// mappingRoot returns the mapping a rewrite operates on. n may be a
// document node or a mapping node. An empty document has no mapping.
func mappingRoot(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	return n
}

func isEmptyDocument(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.DocumentNode && len(n.Content) == 0
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func newKey(text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text}
}

// entryCount returns the number of key/value pairs held by a mapping.
func entryCount(m *yaml.Node) int {
	return len(m.Content) / 2
}

// entryIndex finds the pair index of key (by node identity) within m, or -1.
func entryIndex(m *yaml.Node, key *yaml.Node) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i] == key {
			return i / 2
		}
	}
	return -1
}

// valueOf returns the value paired with key inside m.
func valueOf(m *yaml.Node, key *yaml.Node) *yaml.Node {
	if i := entryIndex(m, key); i >= 0 {
		return m.Content[2*i+1]
	}
	return nil
}

// hasKeyText reports whether m holds an entry whose key text is exactly text,
// ignoring the entry keyed by skip.
func hasKeyText(m *yaml.Node, text string, skip *yaml.Node) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := m.Content[i]
		if k == skip {
			continue
		}
		if k.Kind == yaml.ScalarNode && k.Value == text {
			return true
		}
	}
	return false
}

// removeEntry deletes the pair keyed by key (by identity) and returns the
// detached value.
func removeEntry(m *yaml.Node, key *yaml.Node) *yaml.Node {
	i := entryIndex(m, key)
	if i < 0 {
		return nil
	}
	val := m.Content[2*i+1]
	m.Content = append(m.Content[:2*i], m.Content[2*i+2:]...)
	return val
}

// setValue replaces the value paired with key.
func setValue(m *yaml.Node, key, val *yaml.Node) {
	if i := entryIndex(m, key); i >= 0 {
		m.Content[2*i+1] = val
	}
}

func appendEntry(m *yaml.Node, key, val *yaml.Node) {
	m.Content = append(m.Content, key, val)
}

// nestValue wraps val in one fresh mapping per segment, outermost first, and
// returns the outermost node. nestValue(["b","c"], v) is {b: {c: v}}.
func nestValue(segs []string, val *yaml.Node) *yaml.Node {
	for i := len(segs) - 1; i >= 0; i-- {
		m := newMapping()
		appendEntry(m, newKey(segs[i]), val)
		val = m
	}
	return val
}

// copyComments copies inline and block comments from src to dst when present.
func copyComments(src, dst *yaml.Node) {
	if src == nil || dst == nil {
		return
	}
	if src.HeadComment != "" {
		dst.HeadComment = src.HeadComment
	}
	if src.LineComment != "" {
		dst.LineComment = src.LineComment
	}
	if src.FootComment != "" {
		dst.FootComment = src.FootComment
	}
}

// cloneNode deep-copies n. Alias nodes in the copy point at the copied
// anchors, so the clone shares nothing with the original tree.
func cloneNode(n *yaml.Node) *yaml.Node {
	return cloneInto(n, map[*yaml.Node]*yaml.Node{})
}

func cloneInto(n *yaml.Node, seen map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if c, ok := seen[n]; ok {
		return c
	}
	cp := *n
	seen[n] = &cp
	if len(n.Content) > 0 {
		cp.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = cloneInto(c, seen)
		}
	}
	if n.Alias != nil {
		cp.Alias = cloneInto(n.Alias, seen)
	}
	return &cp
}

// aliasBeforeAnchor returns the first alias, in document order, whose anchor
// has not been defined yet.
func aliasBeforeAnchor(root *yaml.Node) *yaml.Node {
	defined := map[*yaml.Node]bool{}
	var walk func(n *yaml.Node) *yaml.Node
	walk = func(n *yaml.Node) *yaml.Node {
		if n.Kind == yaml.AliasNode {
			if defined[n.Alias] {
				return nil
			}
			return n
		}
		if n.Anchor != "" {
			defined[n] = true
		}
		for _, c := range n.Content {
			if a := walk(c); a != nil {
				return a
			}
		}
		return nil
	}
	return walk(root)
}
