package propkey

import "errors"

var (
	// ErrInvalidPattern is returned when a source or target property path
	// cannot be used, e.g. an empty segment or an unsupported wildcard.
	ErrInvalidPattern = errors.New("propkey: invalid property pattern")

	// ErrInvalidKey is returned when a document key cannot be split into
	// property segments. The document is left untouched.
	ErrInvalidKey = errors.New("propkey: invalid document key")

	// ErrDuplicateKey is returned when the renamed entry would land on a key
	// that already exists in the same mapping.
	ErrDuplicateKey = errors.New("propkey: duplicate key")

	// ErrAliasOrder is returned when moving an entry would place an anchor
	// after an alias that refers to it, which no YAML parser can read back.
	ErrAliasOrder = errors.New("propkey: alias would precede its anchor")
)
