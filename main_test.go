package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mcncl/jsonedit/internal/coerce"
	"github.com/mcncl/jsonedit/internal/compare"
	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/mutator"
	"github.com/mcncl/jsonedit/internal/session"
)

// runCLI parses args into a fresh CLI and runs the selected command with
// stdin as input.
func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	parser, err := kong.New(&CLI, kongOptions()...)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	if err != nil {
		return "", "", err
	}

	var out, errOut bytes.Buffer
	ctx := &Context{
		Config: config.NewConfig(),
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &errOut,
	}
	err = kctx.Run(ctx)
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestGet(t *testing.T) {
	doc := `{"a": {"b": [1, "x", {"c": null}]}}`

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"scalar", []string{"get", "a.b[0]"}, "1\n"},
		{"string", []string{"get", "a.b[1]"}, "\"x\"\n"},
		{"raw string", []string{"get", "--raw", "a.b[1]"}, "x\n"},
		{"container", []string{"get", "a.b[2]"}, "{\n    \"c\": null\n}\n"},
		{"whole document", []string{"get"}, "{\n    \"a\": {\n        \"b\": [\n            1,\n            \"x\",\n            {\n                \"c\": null\n            }\n        ]\n    }\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, doc, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestGet_Missing(t *testing.T) {
	_, _, err := runCLI(t, `{"a": 1}`, "get", "b.c")
	assert.True(t, stderrors.Is(err, mutator.ErrNotFound))
	assert.Contains(t, errors.UserFriendlyError(err), "Edit error")
}

func TestSet(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		args []string
		want string
	}{
		{
			name: "auto-vivification",
			doc:  `{}`,
			args: []string{"set", "a.b[0]", "5"},
			want: "{\n    \"a\": {\n        \"b\": [\n            5\n        ]\n    }\n}\n",
		},
		{
			name: "inferred boolean",
			doc:  `{"on": false}`,
			args: []string{"set", "on", "true"},
			want: "{\n    \"on\": true\n}\n",
		},
		{
			name: "explicit type",
			doc:  `{}`,
			args: []string{"set", "--type", "string", "n", "12"},
			want: "{\n    \"n\": \"12\"\n}\n",
		},
		{
			name: "malformed number under number tag",
			doc:  `[]`,
			args: []string{"set", "-t", "number", "[0]", "abc"},
			want: "[\n    0\n]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.doc, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSet_Errors(t *testing.T) {
	_, _, err := runCLI(t, `{}`, "set", "--type", "date", "a", "1")
	assert.True(t, stderrors.Is(err, coerce.ErrUnknownType))

	_, _, err = runCLI(t, `{"a": 1}`, "set", "a.b", "1")
	assert.True(t, stderrors.Is(err, mutator.ErrTypeMismatch))

	_, _, err = runCLI(t, `{"a": 1}`, "set", "a[", "1")
	assert.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Path error")

	_, _, err = runCLI(t, "", "set", "a", "1")
	assert.True(t, stderrors.Is(err, errors.ErrEmptyInput))

	_, _, err = runCLI(t, "{", "set", "a", "1")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidJSON))
}

func TestDelete(t *testing.T) {
	out, _, err := runCLI(t, `{"a": [1, 2, 3], "b": 1}`, "delete", "--yes", "a[1]")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": [\n        1,\n        3\n    ],\n    \"b\": 1\n}\n", out)

	out, _, err = runCLI(t, `{"a": 1, "b": 2}`, "delete", "-y", "a")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"b\": 2\n}\n", out)
}

func TestDelete_Prompt(t *testing.T) {
	file := writeFile(t, "doc.json", `{"a": 1, "b": 2}`)

	out, prompt, err := runCLI(t, "y\n", "delete", "-i", file, "b")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1\n}\n", out)
	assert.Contains(t, prompt, session.DeletePropertyPrompt)

	out, prompt, err = runCLI(t, "n\n", "delete", "-i", file, "b")
	assert.True(t, stderrors.Is(err, errors.ErrCancelled))
	assert.Empty(t, out)
	assert.Contains(t, prompt, session.DeletePropertyPrompt)

	_, prompt, err = runCLI(t, "", "delete", "-i", file, "[0]")
	// End of input declines
	assert.True(t, stderrors.Is(err, errors.ErrCancelled))
	assert.Contains(t, prompt, session.DeleteArrayItemPrompt)
}

func TestDelete_NeedsConfirmationSource(t *testing.T) {
	_, _, err := runCLI(t, `{"a": 1}`, "delete", "a")
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "--yes")
}

func TestDelete_Root(t *testing.T) {
	_, _, err := runCLI(t, `{"a": 1}`, "delete", "-y", "")
	assert.True(t, stderrors.Is(err, mutator.ErrRootDelete))
}

func TestAddProperty(t *testing.T) {
	out, _, err := runCLI(t, `{"user": {}}`, "add-property", "--at", "user", "--type", "number", "age", "30")
	require.NoError(t, err)
	assert.Equal(t, int64(30), gjson.Get(out, "user.age").Int())

	out, _, err = runCLI(t, `{}`, "add-property", "-t", "array", "tags")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"tags\": []\n}\n", out)

	_, _, err = runCLI(t, `{}`, "add-property", "a.b", "x")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidName))
}

func TestAddItem(t *testing.T) {
	out, _, err := runCLI(t, `["a"]`, "add-item", "x")
	require.NoError(t, err)
	assert.Equal(t, "[\n    \"a\",\n    \"x\"\n]\n", out)

	out, _, err = runCLI(t, `{"l": []}`, "add-item", "--at", "l", "-t", "boolean", "TRUE")
	require.NoError(t, err)
	assert.True(t, gjson.Get(out, "l.0").Bool())

	// A missing array is left alone
	out, _, err = runCLI(t, `{"l":[]}`, "add-item", "--at", "nope", "x")
	require.NoError(t, err)
	assert.Equal(t, `{"l":[]}`+"\n", out)
}

func TestFmt_OutputFile(t *testing.T) {
	input := writeFile(t, "in.json", `{"z":1,"a":[true,null,"s"]}`)
	output := filepath.Join(t.TempDir(), "out.json")

	out, _, err := runCLI(t, "", "fmt", "-i", input, "-o", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"z\": 1,\n    \"a\": [\n        true,\n        null,\n        \"s\"\n    ]\n}\n", string(data))
}

func TestFmt_MissingFile(t *testing.T) {
	_, _, err := runCLI(t, "", "fmt", "-i", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))
}

func TestFlatten(t *testing.T) {
	doc := `{"b": 1, "a": {"c": "x", "d": [true]}}`

	out, _, err := runCLI(t, doc, "flatten")
	require.NoError(t, err)
	assert.Equal(t, "a.c: x\na.d/0: true\nb: 1\n", out)

	out, _, err = runCLI(t, doc, "flatten", "--paths")
	require.NoError(t, err)
	assert.Equal(t, "b\na.c\na.d[0]\n", out)
}

func TestCompare(t *testing.T) {
	want := writeFile(t, "want.json", `{"a": 1, "b": "x"}`)
	same := writeFile(t, "same.json", `{"a":1.0,"b":"x"}`)
	other := writeFile(t, "other.json", `{"a": 2, "b": "x"}`)

	out, _, err := runCLI(t, "", "compare", want, same)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, _, err = runCLI(t, "", "compare", want, other)
	assert.True(t, stderrors.Is(err, errDocumentsDiffer))
	assert.True(t, strings.HasPrefix(out, compare.Header), out)
	assert.Contains(t, out, `-    "a": 1,`)
	assert.Contains(t, out, `+    "a": 2,`)
}

func TestSkeleton(t *testing.T) {
	schemaFile := writeFile(t, "schema.json", `{
		"type": "object",
		"required": ["name", "tags"],
		"properties": {
			"name": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"age": {"type": "integer"}
		}
	}`)

	out, _, err := runCLI(t, "", "skeleton", schemaFile)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"name\": \"\",\n    \"tags\": [\n        \"\"\n    ]\n}\n", out)

	_, _, err = runCLI(t, "", "skeleton", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNewContext_ConfigFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Config = writeFile(t, "jsonedit.yml", "document:\n  indent: \"  \"\nlimits:\n  max_array_padding: 5\n")
	CLI.Indent = ""

	ctx, err := newContext()
	require.NoError(t, err)
	assert.Equal(t, "  ", ctx.Config.Document.Indent)
	assert.Equal(t, 5, ctx.Config.Limits.MaxArrayPadding)

	CLI.Indent = "\t"
	ctx, err = newContext()
	require.NoError(t, err)
	assert.Equal(t, "\t", ctx.Config.Document.Indent)
}

func TestNewContext_InvalidConfig(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Config = writeFile(t, "jsonedit.yml", "document:\n  indent: \"xx\"\n")

	_, err := newContext()
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Configuration error")
}
