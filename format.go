package propkey

import "bytes"

// docMeta holds formatting hints captured at parse time.
type docMeta struct {
	indent        int
	finalNewline  bool
	leadingMarker bool // stream opened with an explicit "---"
	indentless    bool // block sequences sit at their key's column
	commentSpaces map[string]int
}

func captureMeta(data []byte) docMeta {
	return docMeta{
		indent:        detectIndent(data),
		finalNewline:  len(data) == 0 || bytes.HasSuffix(data, []byte("\n")),
		leadingMarker: startsWithMarker(data),
		indentless:    usesIndentlessSequences(data),
		commentSpaces: captureCommentSpacing(data),
	}
}

func startsWithMarker(data []byte) bool {
	for _, ln := range bytes.Split(data, []byte("\n")) {
		if isBlankOrComment(ln) {
			continue
		}
		t := bytes.TrimRight(ln, " \r")
		return bytes.Equal(t, []byte("---")) || bytes.HasPrefix(t, []byte("--- "))
	}
	return false
}

// detectIndent returns the base indent: the GCD of all non-zero indents of
// content lines, 2 when nothing is indented.
func detectIndent(b []byte) int {
	indents := []int{}
	for _, ln := range bytes.Split(b, []byte("\n")) {
		if isBlankOrComment(ln) {
			continue
		}
		if n := leadingSpaces(ln); n > 0 {
			indents = append(indents, n)
		}
	}
	if len(indents) == 0 {
		return 2
	}
	g := indents[0]
	for _, n := range indents[1:] {
		g = gcd(g, n)
	}
	if g > 8 {
		return 2
	}
	return g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func isBlankOrComment(ln []byte) bool {
	t := bytes.TrimSpace(ln)
	return len(t) == 0 || t[0] == '#'
}

// usesIndentlessSequences reports whether some block sequence in data starts
// at the same column as its parent key.
func usesIndentlessSequences(data []byte) bool {
	lines := bytes.Split(data, []byte("\n"))
	for i := 0; i+1 < len(lines); i++ {
		if opensBlock(lines[i]) && isSeqItem(lines[i+1]) && leadingSpaces(lines[i+1]) == leadingSpaces(lines[i]) {
			return true
		}
	}
	return false
}

// outdentSequences moves every block sequence that yaml.v3 indented under its
// key back to the key's column, along with everything nested in it.
func outdentSequences(data []byte, indent int) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i := 0; i+1 < len(lines); i++ {
		col := leadingSpaces(lines[i])
		if !opensBlock(lines[i]) || !isSeqItem(lines[i+1]) || leadingSpaces(lines[i+1]) != col+indent {
			continue
		}
		for j := i + 1; j < len(lines) && leadingSpaces(lines[j]) > col; j++ {
			lines[j] = lines[j][min(indent, leadingSpaces(lines[j])):]
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

func opensBlock(ln []byte) bool {
	return bytes.HasSuffix(bytes.TrimRight(ln, " "), []byte(":"))
}

func isSeqItem(ln []byte) bool {
	t := bytes.TrimLeft(ln, " ")
	return bytes.Equal(t, []byte("-")) || bytes.HasPrefix(t, []byte("- "))
}

// inlineComment locates a trailing comment on ln: the index of '#' and the
// number of spaces before it. Whole-line comments are not inline.
func inlineComment(ln []byte) (idx, gap int, ok bool) {
	idx = bytes.Index(ln, []byte(" #"))
	if idx < 0 {
		return 0, 0, false
	}
	idx++
	for gap < idx && ln[idx-1-gap] == ' ' {
		gap++
	}
	return idx, gap, gap < idx
}

// captureCommentSpacing maps each inline comment's text to the gap before it.
func captureCommentSpacing(data []byte) map[string]int {
	out := map[string]int{}
	for _, ln := range bytes.Split(data, []byte("\n")) {
		if idx, gap, ok := inlineComment(ln); ok {
			out[string(ln[idx:])] = gap
		}
	}
	return out
}

func applyCommentSpacing(data []byte, spacing map[string]int) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, ln := range lines {
		idx, gap, ok := inlineComment(ln)
		if !ok {
			continue
		}
		if want, found := spacing[string(ln[idx:])]; found && want != gap {
			var b bytes.Buffer
			b.Write(ln[:idx-gap])
			b.Write(bytes.Repeat([]byte(" "), want))
			b.Write(ln[idx:])
			lines[i] = b.Bytes()
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

func leadingSpaces(line []byte) int {
	return len(line) - len(bytes.TrimLeft(line, " "))
}
