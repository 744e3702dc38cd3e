package propkey

import (
	"testing"

	gyaml "github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, in string) string {
	t.Helper()
	doc, err := Parse([]byte(in))
	require.NoError(t, err)
	out, err := doc.Marshal()
	require.NoError(t, err)
	return string(out)
}

func TestParseRejectsNonMapping(t *testing.T) {
	for _, in := range []string{"- a\n- b\n", "just a string\n", "a: 1\n---\n- b\n"} {
		_, err := Parse([]byte(in))
		assert.ErrorIs(t, err, ErrNotMapping, in)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("a: [1, 2\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotMapping)
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "\n", "   \n"} {
		doc, err := Parse([]byte(in))
		require.NoError(t, err)
		require.Equal(t, 1, doc.Len())
		assert.Equal(t, 0, entryCount(doc.Roots()[0]))
	}
}

func TestMarshalFinalNewline(t *testing.T) {
	assert.Equal(t, "a: 1\n", roundTrip(t, "a: 1\n"))
	assert.Equal(t, "a: 1", roundTrip(t, "a: 1"))
}

func TestMarshalKeepsIndent(t *testing.T) {
	in := "a:\n    b:\n        c: 1\n"
	assert.Equal(t, in, roundTrip(t, in))
	in = "a:\n  b:\n    c: 1\n"
	assert.Equal(t, in, roundTrip(t, in))
}

func TestDetectIndent(t *testing.T) {
	assert.Equal(t, 2, detectIndent([]byte("a: 1\n")))
	assert.Equal(t, 4, detectIndent([]byte("a:\n    b: 1\n        # comment\n")))
	assert.Equal(t, 3, detectIndent([]byte("a:\n   b:\n      c: 1\n")))
}

func TestMarshalIndentlessSequence(t *testing.T) {
	in := "spring:\n  profiles:\n  - dev\n  - local\n"
	assert.Equal(t, in, roundTrip(t, in))
}

func TestMarshalNestedIndentlessSequences(t *testing.T) {
	for _, in := range []string{
		"a:\n- x\n- y\nb:\n  c:\n  - 1\n",
		"items:\n- name: a\n  port: 1\n- name: b\n  port: 2\n",
	} {
		assert.Equal(t, in, roundTrip(t, in))
	}
}

func TestMarshalMergeKeyUntouched(t *testing.T) {
	in := "base: &b\n  x: 1\nd:\n  <<: *b\n  y: 2\nold.key: 1\n"
	assert.Equal(t, in, roundTrip(t, in))

	doc, err := Parse([]byte(in))
	require.NoError(t, err)
	changed, err := RewriteDocument(doc, Options{Source: "old.key", Target: "new.key"})
	require.NoError(t, err)
	require.True(t, changed)
	out, err := doc.Marshal()
	require.NoError(t, err)
	assert.Equal(t, "base: &b\n  x: 1\nd:\n  <<: *b\n  y: 2\nnew.key: 1\n", string(out))
}

func TestMarshalCommentSpacing(t *testing.T) {
	in := "a: 1    # keep the gap\nb: 2 # one\nc:\n    # indented\n    d: 3  # two\n"
	assert.Equal(t, in, roundTrip(t, in))
}

func TestMarshalLeadingMarker(t *testing.T) {
	in := "---\na: 1\n"
	assert.Equal(t, in, roundTrip(t, in))
}

func TestMarshalEmptyDocument(t *testing.T) {
	doc, err := Parse(nil)
	require.NoError(t, err)
	out, err := doc.Marshal()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestMultiDocument(t *testing.T) {
	in := "a: 1\n---\nb: 2\n"
	doc, err := Parse([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Len())
	assert.Equal(t, in, roundTrip(t, in))
}

func TestOrderedView(t *testing.T) {
	doc, err := Parse([]byte("z: 1\na.b: 2\nm:\n  y: 3\n  x: 4\n"))
	require.NoError(t, err)
	views, err := doc.Ordered()
	require.NoError(t, err)
	require.Len(t, views, 1)
	ms := views[0]
	require.Len(t, ms, 3)
	assert.Equal(t, "z", ms[0].Key)
	assert.Equal(t, "a.b", ms[1].Key)
	inner, ok := ms[2].Value.(gyaml.MapSlice)
	require.True(t, ok, "nested mapping should stay ordered, got %T", ms[2].Value)
	assert.Equal(t, "y", inner[0].Key)
	assert.Equal(t, "x", inner[1].Key)
}

func TestJSONView(t *testing.T) {
	doc, err := Parse([]byte("a.b: 1\nc:\n  d: [x, y]\n---\ne: true\n"))
	require.NoError(t, err)
	views, err := doc.JSON()
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.JSONEq(t, `{"a.b": 1, "c": {"d": ["x", "y"]}}`, string(views[0]))
	assert.JSONEq(t, `{"e": true}`, string(views[1]))
}

func TestFromOrdered(t *testing.T) {
	doc := FromOrdered(gyaml.MapSlice{
		{Key: "management.metrics", Value: gyaml.MapSlice{
			{Key: "binders", Value: gyaml.MapSlice{
				{Key: "files.enabled", Value: true},
			}},
		}},
		{Key: "list", Value: []interface{}{"a", 1}},
	})
	changed, err := RewriteDocument(doc, binderOpts)
	require.NoError(t, err)
	require.True(t, changed)
	out, err := doc.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `management.metrics:
  enable:
    process:
      files: true
list:
  - a
  - 1
`, string(out))
}
