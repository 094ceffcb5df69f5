// Package compare reports the differences between two documents.
package compare

import (
	"github.com/andreyvit/diff"

	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
)

// Header starts every non-empty report.
const Header = "mismatch (-want +got):\n"

// Documents formats want and got with indent and returns a line diff of the
// two texts, or "" when they format identically. Property order counts.
func Documents(want, got *models.Value, indent string) (string, error) {
	f := formatter.NewFormatterWithIndent(indent)
	wantText, err := f.Format(want)
	if err != nil {
		return "", err
	}
	gotText, err := f.Format(got)
	if err != nil {
		return "", err
	}
	if wantText == gotText {
		return "", nil
	}
	return Header + diff.LineDiff(wantText, gotText), nil
}

// Texts loads both documents and compares them with Documents.
func Texts(want, got, indent string) (string, error) {
	wantDoc, err := parser.Load(want)
	if err != nil {
		return "", err
	}
	gotDoc, err := parser.Load(got)
	if err != nil {
		return "", err
	}
	return Documents(wantDoc, gotDoc, indent)
}
