// Package form renders a document as HTML form controls.
//
// Every control carries the path of the value it edits so that the page
// script and the server can feed edits back through the session: inputs
// are named FieldPrefix+path, delete buttons carry data-path and data-key or
// data-index, and add buttons carry data-path and data-indent. Properties
// whose names contain '.', '[' or ']' have no path and are shown as text.
package form

import (
	"fmt"
	"html"
	"strings"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/log"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/path"
)

// FieldPrefix marks form inputs that hold document values.
const FieldPrefix = "field:"

const indentWidth = 20

// Renderer turns documents into HTML.
type Renderer struct {
	readOnly bool
	humanize bool
	logger   *zap.SugaredLogger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithReadOnly renders values as monospaced text without controls.
func WithReadOnly(readOnly bool) Option {
	return func(r *Renderer) { r.readOnly = readOnly }
}

// WithHumanizedLabels shows "firstName" as "First Name".
func WithHumanizedLabels(humanize bool) Option {
	return func(r *Renderer) { r.humanize = humanize }
}

// WithConfig applies the server and form settings from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(r *Renderer) {
		r.readOnly = cfg.Server.ReadOnly
		r.humanize = cfg.Form.HumanizeLabels
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		logger: log.Named("form"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadOnly reports whether r renders without controls.
func (r *Renderer) ReadOnly() bool {
	return r.readOnly
}

// Render returns the HTML for doc.
func (r *Renderer) Render(doc *models.Value) string {
	var sb strings.Builder
	if r.readOnly {
		r.renderReadOnly(&sb, doc, 0)
	} else {
		r.render(&sb, doc, path.Root, 0)
	}
	return sb.String()
}

func (r *Renderer) render(sb *strings.Builder, v *models.Value, at path.Path, indent int) {
	switch v.Kind() {
	case models.Object:
		keys := v.Keys()
		if len(keys) == 0 {
			r.logger.Debugf("empty object at %q", at.String())
			openField(sb, indent)
			sb.WriteString(`<em>Empty object</em>`)
			closeField(sb)
		}
		for _, key := range keys {
			child, _ := v.Field(key)
			if !path.ValidName(key) {
				// No path can address this key, so it is shown but not editable.
				r.logger.Debugf("key %q under %q cannot be addressed", key, at.String())
				openField(sb, indent)
				fmt.Fprintf(sb, `<label>%s:</label>`, html.EscapeString(r.label(key)))
				r.renderReadOnlyChild(sb, child, indent)
				continue
			}
			childPath := at.Child(key)

			openField(sb, indent)
			fmt.Fprintf(sb, `<label for="%s">%s:</label>`, attr(childPath.String()), html.EscapeString(r.label(key)))
			if !child.Kind().IsContainer() {
				writeInput(sb, childPath, child)
			}
			fmt.Fprintf(sb, `<button type="button" class="delete-property-btn" data-path="%s" data-key="%s" onclick="deleteProperty(this)">Delete</button>`,
				attr(at.String()), attr(key))
			closeField(sb)
			if child.Kind().IsContainer() {
				r.render(sb, child, childPath, indent+1)
			}
		}
		openField(sb, indent)
		fmt.Fprintf(sb, `<button type="button" class="add-property-btn" data-path="%s" data-indent="%d" onclick="addProperty(this)">+ Add Property</button>`,
			attr(at.String()), indent)
		closeField(sb)

	case models.Array:
		items := v.Items()
		if len(items) == 0 {
			openField(sb, indent)
			sb.WriteString(`<em>Empty array</em>`)
			closeField(sb)
		}
		for i, child := range items {
			childPath := at.At(i)

			openField(sb, indent)
			fmt.Fprintf(sb, `<label for="%s">[%d]:</label>`, attr(childPath.String()), i)
			if !child.Kind().IsContainer() {
				writeInput(sb, childPath, child)
			}
			fmt.Fprintf(sb, `<button type="button" class="delete-array-item-btn" data-path="%s" data-index="%d" onclick="deleteArrayItem(this)">Delete</button>`,
				attr(at.String()), i)
			closeField(sb)
			if child.Kind().IsContainer() {
				r.render(sb, child, childPath, indent+1)
			}
		}
		openField(sb, indent)
		fmt.Fprintf(sb, `<button type="button" class="add-array-item-btn" data-path="%s" data-indent="%d" onclick="addArrayItem(this)">+ Add Item</button>`,
			attr(at.String()), indent)
		closeField(sb)

	default:
		// Only a scalar root gets here.
		sb.WriteString(`<div class="json-field">`)
		fmt.Fprintf(sb, `<label for="%s">Value:</label>`, attr(at.String()))
		writeInput(sb, at, v)
		closeField(sb)
	}
}

func (r *Renderer) renderReadOnly(sb *strings.Builder, v *models.Value, indent int) {
	switch v.Kind() {
	case models.Object:
		keys := v.Keys()
		if len(keys) == 0 {
			openField(sb, indent)
			sb.WriteString(`<em>Empty object</em>`)
			closeField(sb)
		}
		for _, key := range keys {
			child, _ := v.Field(key)
			openField(sb, indent)
			fmt.Fprintf(sb, `<label>%s:</label>`, html.EscapeString(r.label(key)))
			r.renderReadOnlyChild(sb, child, indent)
		}
	case models.Array:
		items := v.Items()
		if len(items) == 0 {
			openField(sb, indent)
			sb.WriteString(`<em>Empty array</em>`)
			closeField(sb)
		}
		for i, child := range items {
			openField(sb, indent)
			fmt.Fprintf(sb, `<label>[%d]:</label>`, i)
			r.renderReadOnlyChild(sb, child, indent)
		}
	default:
		sb.WriteString(`<div class="json-field">`)
		sb.WriteString(`<label>Value:</label>`)
		writeText(sb, v)
		closeField(sb)
	}
}

func (r *Renderer) renderReadOnlyChild(sb *strings.Builder, child *models.Value, indent int) {
	if child.Kind().IsContainer() {
		closeField(sb)
		r.renderReadOnly(sb, child, indent+1)
		return
	}
	writeText(sb, child)
	closeField(sb)
}

func (r *Renderer) label(key string) string {
	if !r.humanize {
		return key
	}
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(strcase.ToDelimited(key, ' '))
}

// InputText is the text an input shows for a scalar. Null shows as empty,
// which reads back as null on submit.
func InputText(v *models.Value) string {
	switch v.Kind() {
	case models.String:
		return v.AsString()
	case models.Null:
		return ""
	default:
		return v.String()
	}
}

func writeInput(sb *strings.Builder, at path.Path, v *models.Value) {
	fmt.Fprintf(sb, `<input type="text" name="%s" id="%s" value="%s">`,
		attr(FieldPrefix+at.String()), attr(at.String()), attr(InputText(v)))
}

func writeText(sb *strings.Builder, v *models.Value) {
	fmt.Fprintf(sb, `<span class="json-value">%s</span>`, html.EscapeString(InputText(v)))
}

func openField(sb *strings.Builder, indent int) {
	fmt.Fprintf(sb, `<div class="json-field" style="margin-left: %dpx;">`, indent*indentWidth)
}

func closeField(sb *strings.Builder) {
	sb.WriteString("</div>\n")
}

func attr(s string) string {
	return html.EscapeString(s)
}
