package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/models"
)

func TestFormat_NestedDocument(t *testing.T) {
	doc := models.NewObject()
	user := models.NewObject()
	user.SetField("name", models.NewString("Jane"))
	user.SetField("tags", models.NewArray(models.NewString("go"), models.NewNumber(1.5)))
	doc.SetField("user", user)
	doc.SetField("active", models.NewBool(true))
	doc.SetField("none", models.NewNull())

	formatter := NewFormatter()
	formatted, err := formatter.Format(doc)
	require.NoError(t, err)

	expectedOutput := `{
    "user": {
        "name": "Jane",
        "tags": [
            "go",
            1.5
        ]
    },
    "active": true,
    "none": null
}`
	assert.Equal(t, expectedOutput, formatted)
}

func TestFormat_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		value *models.Value
		want  string
	}{
		{"null", models.NewNull(), "null"},
		{"nil", nil, "null"},
		{"string", models.NewString("a\"b"), `"a\"b"`},
		{"number", models.NewNumber(42), "42"},
		{"empty object", models.NewObject(), "{}"},
		{"empty array", models.NewArray(), "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Dump(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_CustomIndent(t *testing.T) {
	doc := models.NewArray(models.NewObject(), models.NewArray(models.NewNumber(1)))

	formatted, err := NewFormatterWithIndent("\t").Format(doc)
	require.NoError(t, err)
	assert.Equal(t, "[\n\t{},\n\t[\n\t\t1\n\t]\n]", formatted)

	compact, err := NewFormatterWithIndent("").Format(doc)
	require.NoError(t, err)
	assert.Equal(t, "[{},[1]]", compact)
}

func TestNewFormatterWithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Document.Indent = "  "

	f := NewFormatterWithConfig(cfg)
	assert.Equal(t, "  ", f.Indent())

	formatted, err := f.Format(models.NewArray(models.NewBool(false)))
	require.NoError(t, err)
	assert.Equal(t, "[\n  false\n]", formatted)
}

func TestFormat_Errors(t *testing.T) {
	_, err := NewFormatter().Format(models.NewArray(&models.Value{}))
	assert.Error(t, err)

	_, err = NewFormatterWithIndent("--").Format(models.NewNull())
	assert.Error(t, err)
}
