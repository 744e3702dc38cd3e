package propkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		key  string
		want []string
		err  bool
	}{
		{key: "a", want: []string{"a"}},
		{key: "a.b.c", want: []string{"a", "b", "c"}},
		{key: "first-name", want: []string{"first-name"}},
		{key: "a.*", want: []string{"a", "*"}},
		{key: "", err: true},
		{key: "a..b", err: true},
		{key: ".a", err: true},
		{key: "a.", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := Segments(tt.key)
			if tt.err {
				require.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("management.metrics.binders.*.enabled")
	require.NoError(t, err)
	require.Len(t, p, 5)
	assert.Equal(t, Segment{Text: "*", Wildcard: true}, p[3])
	assert.False(t, p[4].Wildcard)
	assert.Equal(t, "management.metrics.binders.*.enabled", p.String())

	p, err = ParsePattern("*")
	require.NoError(t, err)
	assert.Equal(t, Pattern{{Text: "*", Wildcard: true}}, p)

	p, err = ParsePattern("*.a.*")
	require.NoError(t, err)
	assert.True(t, p[0].Wildcard)
	assert.True(t, p[2].Wildcard)
}

func TestParsePatternRejects(t *testing.T) {
	for _, s := range []string{
		"",
		".",
		"a..b",
		"a.",
		".a",
		"**",
		"a.**.b",
		"fo*",
		"a.*b",
		"a.*.*.b",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := ParsePattern(s)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget("management.metrics.enable.process.files")
	require.NoError(t, err)
	assert.Equal(t, []string{"management", "metrics", "enable", "process", "files"}, got)

	_, err = ParseTarget("a.*.c")
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = ParseTarget("")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}
