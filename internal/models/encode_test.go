package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendJSON_Indented(t *testing.T) {
	doc := NewObject()
	doc.SetField("name", NewString("Jane"))
	doc.SetField("tags", NewArray(NewString("a"), NewNumber(2)))
	doc.SetField("empty", NewObject())
	doc.SetField("none", NewArray())

	want := `{
    "name": "Jane",
    "tags": [
        "a",
        2
    ],
    "empty": {},
    "none": []
}`
	assert.Equal(t, want, string(doc.AppendJSON(nil, "    ")))
}

func TestAppendNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-12.5, "-12.5"},
		{0.1, "0.1"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{123456789012, "123456789012"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendNumber(nil, tt.in)))
		})
	}
}

func TestAppendString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", `"hello"`},
		{"quotes and backslash", `say "hi" \o/`, `"say \"hi\" \\o/"`},
		{"control characters", "a\nb\tc\x01", `"a\nb\tc\u0001"`},
		{"html is not escaped", "<a href='x'>&</a>", `"<a href='x'>&</a>"`},
		{"unicode kept", "héllo ✓", `"héllo ✓"`},
		{"invalid utf8", "a\xffb", `"a` + "\uFFFD" + `b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendString(nil, tt.in)))
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	doc := NewArray(NewBool(false), NewNull(), NewString("x"))
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `[false,null,"x"]`, string(out))

	_, err = json.Marshal(NewArray(&Value{}))
	assert.Error(t, err)
}

func TestUnmarshalJSON(t *testing.T) {
	var doc Value
	require.NoError(t, json.Unmarshal([]byte(`{"z":1,"a":{"k":[true]},"z":2}`), &doc))

	// Duplicate keys: last value, first position
	assert.Equal(t, []string{"z", "a"}, doc.Keys())
	z, _ := doc.Field("z")
	assert.Equal(t, 2.0, z.AsNumber())

	var bad Value
	assert.Error(t, bad.UnmarshalJSON([]byte(`{"a":}`)))
	assert.Error(t, bad.UnmarshalJSON([]byte(`1e999`)))
}
