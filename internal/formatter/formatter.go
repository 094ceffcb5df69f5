package formatter

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
)

// Formatter serializes documents into the buffer format: one level of
// indent per nesting depth, ": " after keys and no trailing newline.
type Formatter struct {
	indent string
}

// NewFormatter creates a Formatter with the default four-space indent
func NewFormatter() *Formatter {
	return &Formatter{indent: config.DefaultIndent}
}

// NewFormatterWithIndent creates a Formatter with a custom indent. An empty
// indent produces compact output.
func NewFormatterWithIndent(indent string) *Formatter {
	return &Formatter{indent: indent}
}

// NewFormatterWithConfig creates a Formatter using the document settings
func NewFormatterWithConfig(cfg *config.Config) *Formatter {
	return NewFormatterWithIndent(cfg.Document.Indent)
}

// Indent returns the indent used per nesting level.
func (f *Formatter) Indent() string {
	return f.indent
}

// Format takes a document and returns its text
func (f *Formatter) Format(v *models.Value) (string, error) {
	if v == nil {
		return "null", nil
	}
	if !v.Valid() {
		return "", fmt.Errorf("failed to format document: value of kind %s cannot be serialized", v.Kind())
	}
	if strings.Trim(f.indent, " \t") != "" {
		return "", fmt.Errorf("failed to format document: indent %q must be spaces or tabs", f.indent)
	}
	return string(v.AppendJSON(nil, f.indent)), nil
}

// Reformat loads text and formats it again. Formatting the result a second
// time returns it unchanged.
func (f *Formatter) Reformat(text string) (string, error) {
	doc, err := parser.Load(text)
	if err != nil {
		return "", err
	}
	return f.Format(doc)
}

var defaultFormatter = NewFormatter()

// Dump formats v with the default indent.
func Dump(v *models.Value) (string, error) {
	return defaultFormatter.Format(v)
}
