package path

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Path
	}{
		{"empty is root", "", Path{}},
		{"single name", "a", Path{Name("a")}},
		{"dotted", "a.b.c", Path{Name("a"), Name("b"), Name("c")}},
		{"mixed", "a.b[2].c[0]", Path{Name("a"), Name("b"), Index(2), Name("c"), Index(0)}},
		{"leading index", "[3]", Path{Index(3)}},
		{"consecutive indices", "m[1][2]", Path{Name("m"), Index(1), Index(2)}},
		{"adjacent dots skipped", "a..b", Path{Name("a"), Name("b")}},
		{"leading and trailing dots", ".a.", Path{Name("a")}},
		{"dot before bracket", "a.[1]", Path{Name("a"), Index(1)}},
		{"name after bracket without dot", "a[1]b", Path{Name("a"), Index(1), Name("b")}},
		{"spaces are part of names", "first name", Path{Name("first name")}},
		{"unicode name", "größe.ñ", Path{Name("größe"), Name("ñ")}},
		{"leading zeros", "a[007]", Path{Name("a"), Index(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    error
		wantOffset int
	}{
		{"non numeric index", "a[x]", ErrMalformedIndex, 1},
		{"empty index", "a[]", ErrMalformedIndex, 1},
		{"negative index", "a[-1]", ErrMalformedIndex, 1},
		{"signed index", "a[+1]", ErrMalformedIndex, 1},
		{"fractional index", "a[1.5]", ErrMalformedIndex, 1},
		{"padded index", "a[ 2]", ErrMalformedIndex, 1},
		{"overflowing index", "a[99999999999999999999999]", ErrMalformedIndex, 1},
		{"unterminated bracket", "a[1", ErrInvalidPath, 1},
		{"nested bracket", "a[[1]]", ErrInvalidPath, 2},
		{"stray close", "a]", ErrInvalidPath, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.wantOffset, syntaxErr.Offset)
			assert.Equal(t, tt.input, syntaxErr.Path)
		})
	}
}

func TestDecodeExact(t *testing.T) {
	for _, text := range []string{"", "a", "a.b[2].c[0]", "[0][1]", "user.first name"} {
		p, err := DecodeExact(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, p.String())
	}

	tests := []struct {
		input      string
		wantOffset int
	}{
		{"a..b", 2},
		{".a", 0},
		{"a.", 1},
		{"a[01]", 2},
		{"a.[0]", 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := DecodeExact(tt.input)
			assert.True(t, errors.Is(err, ErrNotCanonical), "got %v", err)

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.wantOffset, syntaxErr.Offset)
		})
	}

	_, err := DecodeExact("a[x]")
	assert.True(t, errors.Is(err, ErrMalformedIndex))
}

func TestPath_String(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{Root, ""},
		{Path{Name("a")}, "a"},
		{Path{Index(0)}, "[0]"},
		{Path{Name("a"), Name("b"), Index(2), Name("c"), Index(0)}, "a.b[2].c[0]"},
		{Path{Index(1), Name("x")}, "[1].x"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestPath_RoundTrip(t *testing.T) {
	paths := []Path{
		Root,
		{Name("a")},
		{Index(4)},
		{Name("users"), Index(0), Name("address"), Name("zip")},
		{Index(0), Index(1), Name("k"), Index(10)},
	}

	for _, p := range paths {
		t.Run(p.String(), func(t *testing.T) {
			decoded, err := Decode(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(decoded), "decoded %v", decoded)
		})
	}
}

func TestPath_Builders(t *testing.T) {
	base := MustDecode("a")
	child := base.Child("b").At(3)

	assert.Equal(t, "a", base.String(), "builders must not modify the receiver")
	assert.Equal(t, "a.b[3]", child.String())

	parent, last, ok := child.Parent()
	require.True(t, ok)
	assert.Equal(t, "a.b", parent.String())
	assert.True(t, last.IsIndex())
	assert.Equal(t, 3, last.Index())

	_, _, ok = Root.Parent()
	assert.False(t, ok)
	assert.True(t, Root.IsRoot())
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("name"))
	assert.True(t, ValidName("with space"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("a.b"))
	assert.False(t, ValidName("a[0]"))
	assert.False(t, ValidName("x]"))
}

func TestMustDecode_Panics(t *testing.T) {
	assert.Panics(t, func() { MustDecode("a[") })
}
