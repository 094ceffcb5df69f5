// Package path encodes and decodes locations inside a JSON document.
//
// The syntax joins property names with '.' and writes array indices in
// brackets, for example "a.b[2].c[0]". There is no escaping: property names
// containing '.', '[' or ']' cannot be addressed.
package path

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPath reports misplaced or unterminated brackets.
	ErrInvalidPath = errors.New("invalid path syntax")
	// ErrMalformedIndex reports bracket content that is not a non-negative
	// base-10 integer.
	ErrMalformedIndex = errors.New("malformed array index")
	// ErrNotCanonical reports text that decodes to a path whose encoding
	// differs from the text, such as "a..b", "[01]" or a dotted key.
	ErrNotCanonical = errors.New("path is not in canonical form")
)

// SyntaxError describes where decoding a path failed.
type SyntaxError struct {
	Path   string
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d in %q", e.Err, e.Offset, e.Path)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Key is one navigation step: a property name or an array index.
type Key struct {
	name    string
	index   int
	isIndex bool
}

// Name returns a property-name key.
func Name(name string) Key {
	return Key{name: name}
}

// Index returns an array-index key.
func Index(i int) Key {
	return Key{index: i, isIndex: true}
}

// IsIndex reports whether k addresses an array element.
func (k Key) IsIndex() bool { return k.isIndex }

// Name returns the property name of a name key.
func (k Key) Name() string { return k.name }

// Index returns the array index of an index key.
func (k Key) Index() int { return k.index }

// String renders k the way it appears inside a path.
func (k Key) String() string {
	if k.isIndex {
		return "[" + strconv.Itoa(k.index) + "]"
	}
	return k.name
}

// Path is an ordered sequence of keys. The empty Path is the document root.
type Path []Key

// Root is the empty path.
var Root = Path{}

// IsRoot reports whether p addresses the document root.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Child returns p extended by a property name. p is not modified.
func (p Path) Child(name string) Path {
	return p.With(Name(name))
}

// At returns p extended by an array index. p is not modified.
func (p Path) At(i int) Path {
	return p.With(Index(i))
}

// With returns p extended by keys. p is not modified.
func (p Path) With(keys ...Key) Path {
	out := make(Path, 0, len(p)+len(keys))
	out = append(out, p...)
	return append(out, keys...)
}

// Parent splits p into the path of its container and its last key.
// The root has no parent.
func (p Path) Parent() (Path, Key, bool) {
	if len(p) == 0 {
		return nil, Key{}, false
	}
	return p[:len(p)-1], p[len(p)-1], true
}

// Equal reports whether p and o have the same keys.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String encodes p. Names are joined with '.', indices are bracketed.
func (p Path) String() string {
	var sb strings.Builder
	for i, k := range p {
		if !k.isIndex && i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(k.String())
	}
	return sb.String()
}

// ValidName reports whether name can be written into a path and decoded back
// to the same key.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ".[]")
}

// Decode scans text once from left to right and returns its keys.
// Empty segments between separators are skipped, so "a..b" is [a b].
func Decode(text string) (Path, error) {
	keys := make(Path, 0, 4)
	var token strings.Builder
	inBracket := false
	bracketStart := 0

	fail := func(offset int, err error) (Path, error) {
		return nil, &SyntaxError{Path: text, Offset: offset, Err: err}
	}
	flushName := func() {
		if token.Len() > 0 {
			keys = append(keys, Name(token.String()))
			token.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '.' && !inBracket:
			flushName()
		case c == '[':
			if inBracket {
				return fail(i, ErrInvalidPath)
			}
			flushName()
			inBracket = true
			bracketStart = i
		case c == ']':
			if !inBracket {
				return fail(i, ErrInvalidPath)
			}
			index, ok := parseIndex(token.String())
			if !ok {
				return fail(bracketStart, ErrMalformedIndex)
			}
			keys = append(keys, Index(index))
			token.Reset()
			inBracket = false
		default:
			token.WriteByte(c)
		}
	}

	if inBracket {
		return fail(bracketStart, ErrInvalidPath)
	}
	flushName()
	return keys, nil
}

// DecodeExact is like Decode but also requires text to be the encoding of
// the decoded path. Paths taken from rendered form inputs must pass it, so
// that a name the syntax cannot express is never written somewhere else.
func DecodeExact(text string) (Path, error) {
	p, err := Decode(text)
	if err != nil {
		return nil, err
	}
	if enc := p.String(); enc != text {
		offset := 0
		for offset < len(enc) && offset < len(text) && enc[offset] == text[offset] {
			offset++
		}
		return nil, &SyntaxError{Path: text, Offset: offset, Err: ErrNotCanonical}
	}
	return p, nil
}

// MustDecode is like Decode but panics on error. It is meant for constant
// paths in code and tests.
func MustDecode(text string) Path {
	p, err := Decode(text)
	if err != nil {
		panic(err)
	}
	return p
}

// parseIndex accepts only unsigned base-10 digits that fit an int.
func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
