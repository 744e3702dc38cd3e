package propkey

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

// Document is a parsed YAML stream. Each YAML document in the stream has a
// mapping at its top level.
type Document struct {
	nodes []*yaml.Node // yaml.DocumentNode, one per document in the stream
	meta  docMeta
}

// Parse reads a YAML stream while recording formatting hints. Empty input
// yields a single empty mapping document.
func Parse(data []byte) (*Document, error) {
	d := &Document{meta: captureMeta(data)}
	if len(bytes.TrimSpace(data)) == 0 {
		d.nodes = []*yaml.Node{emptyDocument()}
		return d, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(false)
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("propkey: failed to parse YAML: %w", err)
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			return nil, ErrNotMapping
		}
		switch top := doc.Content[0]; {
		case top.Kind == yaml.MappingNode:
		case top.Kind == yaml.ScalarNode && top.Tag == "!!null":
			// "---" with nothing after it
			doc.Content[0] = newMapping()
		default:
			return nil, ErrNotMapping
		}
		d.nodes = append(d.nodes, &doc)
	}
	if len(d.nodes) == 0 {
		d.nodes = []*yaml.Node{emptyDocument()}
	}
	return d, nil
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{newMapping()}}
}

// Roots returns the top-level mapping of every document in the stream.
func (d *Document) Roots() []*yaml.Node {
	out := make([]*yaml.Node, len(d.nodes))
	for i, n := range d.nodes {
		out[i] = n.Content[0]
	}
	return out
}

// Len returns the number of YAML documents in the stream.
func (d *Document) Len() int { return len(d.nodes) }

// Marshal encodes the stream preserving the detected indent, final newline,
// indentless sequences and inline comment spacing.
func (d *Document) Marshal() ([]byte, error) {
	if d == nil {
		return nil, errors.New("propkey: nil document")
	}
	indent := d.meta.indent
	if indent == 0 {
		indent = 2
	}

	var buf bytes.Buffer
	if d.meta.leadingMarker {
		buf.WriteString("---\n")
	}
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	for _, n := range d.nodes {
		prepareEncode(n)
		if err := enc.Encode(n); err != nil {
			_ = enc.Close()
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	out := buf.Bytes()
	if !d.meta.finalNewline {
		out = bytes.TrimSuffix(out, []byte("\n"))
	}
	if d.meta.indentless {
		out = outdentSequences(out, indent)
	}
	if len(d.meta.commentSpaces) > 0 {
		out = applyCommentSpacing(out, d.meta.commentSpaces)
	}
	return out, nil
}

// prepareEncode renders empty mappings inline as {} and drops the explicit
// !!merge tag yaml.v3 would otherwise print in front of "<<" keys.
func prepareEncode(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.MappingNode {
		if len(n.Content) == 0 {
			n.Style |= yaml.FlowStyle
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == "<<" && k.Tag == "!!merge" {
				k.Tag = ""
			}
		}
	}
	for _, c := range n.Content {
		prepareEncode(c)
	}
}

// Ordered returns an order-preserving view of each document.
func (d *Document) Ordered() ([]gyaml.MapSlice, error) {
	out := make([]gyaml.MapSlice, 0, len(d.nodes))
	for i := range d.nodes {
		b, err := d.encodeOne(i)
		if err != nil {
			return nil, err
		}
		ms := gyaml.MapSlice{}
		if err := gyaml.UnmarshalWithOptions(b, &ms, gyaml.UseOrderedMap()); err != nil {
			return nil, fmt.Errorf("propkey: ordered view of document %d: %w", i, err)
		}
		out = append(out, ms)
	}
	return out, nil
}

// JSON renders each document as JSON, in document order.
func (d *Document) JSON() ([][]byte, error) {
	out := make([][]byte, 0, len(d.nodes))
	for i := range d.nodes {
		b, err := d.encodeOne(i)
		if err != nil {
			return nil, err
		}
		j, err := gyaml.YAMLToJSON(b)
		if err != nil {
			return nil, fmt.Errorf("propkey: document %d to JSON: %w", i, err)
		}
		out = append(out, j)
	}
	return out, nil
}

func (d *Document) encodeOne(i int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	prepareEncode(d.nodes[i])
	if err := enc.Encode(d.nodes[i]); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromOrdered builds a single-document stream from an ordered mapping. Keys
// are written verbatim, so "a.b" stays a composite key.
func FromOrdered(ms gyaml.MapSlice) *Document {
	return &Document{
		nodes: []*yaml.Node{{Kind: yaml.DocumentNode, Content: []*yaml.Node{orderedToYAMLNode(ms)}}},
		meta:  docMeta{indent: 2, finalNewline: true},
	}
}

// orderedToYAMLNode converts a decoded value into a yaml.v3 node while
// preserving the order of gyaml.MapSlice entries.
func orderedToYAMLNode(v interface{}) *yaml.Node {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		if t {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(t)}
	case uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(t)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprint(t)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	case []interface{}:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			seq.Content = append(seq.Content, orderedToYAMLNode(e))
		}
		return seq
	case gyaml.MapSlice:
		mp := newMapping()
		for _, it := range t {
			appendEntry(mp, newKey(fmt.Sprint(it.Key)), orderedToYAMLNode(it.Value))
		}
		return mp
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
	}
}
