// Package schema reads JSON Schema documents and builds starter documents
// from them. It does not validate documents against a schema.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/log"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/mutator"
	"github.com/mcncl/jsonedit/internal/path"
)

// maxDepth bounds $ref recursion.
const maxDepth = 32

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// UnmarshalJSON handles both string and array forms of type
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		st.Types = []string{s}
		return nil
	}

	// Try array of strings
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		st.Types = arr
		return nil
	}

	return fmt.Errorf("type must be string or array of strings")
}

// Primary returns the first type that is not "null", or "null" when that is
// the only type, or empty string if none
func (st SchemaType) Primary() string {
	for _, t := range st.Types {
		if t != "null" {
			return t
		}
	}
	if len(st.Types) > 0 {
		return st.Types[0]
	}
	return ""
}

// Has reports whether t is one of the allowed types
func (st SchemaType) Has(t string) bool {
	for _, candidate := range st.Types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Schema represents the parts of a JSON Schema document used to build
// starter documents
type Schema struct {
	// Meta
	Schema      string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Type - can be string or array of strings in JSON Schema
	Type SchemaType `json:"type,omitempty"`

	// Object properties
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	// Array items
	Items *Schema `json:"items,omitempty"`

	// Composition (basic support)
	AllOf []*Schema `json:"allOf,omitempty"`

	// Definitions for $ref resolution
	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"` // JSON Schema draft 2019-09+

	// Default value, used in place of an empty one
	Default *models.Value `json:"default,omitempty"`
}

// kind returns the type a value for s should have, inferring object or
// array from properties and items when no type is given.
func (s *Schema) kind() string {
	if t := s.Type.Primary(); t != "" {
		return t
	}
	if len(s.Properties) > 0 {
		return "object"
	}
	if s.Items != nil {
		return "array"
	}
	return ""
}

// ParseFile reads and parses a JSON Schema from a file
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	return ParseBytes(data)
}

// ParseBytes parses JSON Schema from bytes
func ParseBytes(data []byte) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse JSON Schema: %w", err)
	}

	return &schema, nil
}

// ParseString parses JSON Schema from a string
func ParseString(s string) (*Schema, error) {
	return ParseBytes([]byte(s))
}

// Builder creates starter documents from a schema
type Builder struct {
	schema      *Schema
	definitions map[string]*Schema // Merged definitions for $ref resolution
	mutator     *mutator.Mutator
	logger      *zap.SugaredLogger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithConfig makes the builder write with the limits from cfg.
func WithConfig(cfg *config.Config) BuilderOption {
	return WithMutator(mutator.NewWithConfig(cfg))
}

// WithMutator makes the builder write through m.
func WithMutator(m *mutator.Mutator) BuilderOption {
	return func(b *Builder) { b.mutator = m }
}

// NewBuilder creates a new skeleton builder
func NewBuilder(schema *Schema, opts ...BuilderOption) *Builder {
	// Merge definitions and $defs
	definitions := make(map[string]*Schema)
	for k, v := range schema.Definitions {
		definitions[k] = v
	}
	for k, v := range schema.Defs {
		definitions[k] = v
	}

	b := &Builder{
		schema:      schema,
		definitions: definitions,
		mutator:     mutator.New(),
		logger:      log.Named("schema"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Skeleton returns an object holding every required property with an empty
// value of its type. Inline object-typed properties are always present so
// that their own required properties have a home.
func (b *Builder) Skeleton() (*models.Value, error) {
	doc := models.NewObject()
	if err := b.fillObject(doc, b.schema, path.Root, 0); err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}
	return doc, nil
}

// Skeleton builds a starter document for schema
func Skeleton(schema *Schema, opts ...BuilderOption) (*models.Value, error) {
	return NewBuilder(schema, opts...).Skeleton()
}

// fillObject adds the required and object-typed properties of s to the
// object at at inside doc.
func (b *Builder) fillObject(doc *models.Value, s *Schema, at path.Path, depth int) error {
	s, err := b.resolve(s, depth)
	if err != nil {
		return err
	}

	for _, name := range s.Required {
		propSchema, ok := s.Properties[name]
		if !ok || b.exists(doc, at.Child(name)) {
			continue
		}
		b.logger.Debugf("adding empty field %q", at.Child(name).String())
		if err := b.addEmptyField(doc, propSchema, at.Child(name), depth+1); err != nil {
			return err
		}
	}

	// Sort property names for deterministic output
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		// Optional references are left out; a self-referencing schema
		// would otherwise never end.
		if s.Properties[name].Ref != "" {
			continue
		}
		propSchema, err := b.resolve(s.Properties[name], depth+1)
		if err != nil {
			return err
		}
		if propSchema.kind() != "object" || b.exists(doc, at.Child(name)) {
			continue
		}
		if _, err := b.mutator.Set(doc, at.Child(name), models.NewObject()); err != nil {
			return err
		}
		if err := b.fillObject(doc, propSchema, at.Child(name), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addEmptyField(doc *models.Value, s *Schema, at path.Path, depth int) error {
	s, err := b.resolve(s, depth)
	if err != nil {
		return err
	}
	if s.Default != nil {
		_, err := b.mutator.Set(doc, at, s.Default.Clone())
		return err
	}

	switch s.kind() {
	case "object":
		if _, err := b.mutator.Set(doc, at, models.NewObject()); err != nil {
			return err
		}
		return b.fillObject(doc, s, at, depth)
	case "array":
		if _, err := b.mutator.Set(doc, at, models.NewArray()); err != nil {
			return err
		}
		return b.addSampleItem(doc, s.Items, at, depth)
	default:
		_, err := b.mutator.Set(doc, at, emptyScalar(s))
		return err
	}
}

// addSampleItem gives an array one empty item when it has an items schema.
// An object item is only kept when it ends up with properties.
func (b *Builder) addSampleItem(doc *models.Value, items *Schema, at path.Path, depth int) error {
	if items == nil {
		return nil
	}
	items, err := b.resolve(items, depth)
	if err != nil {
		return err
	}

	switch items.kind() {
	case "object":
		item := models.NewObject()
		if err := b.fillObject(item, items, path.Root, depth+1); err != nil {
			return err
		}
		if item.Len() == 0 {
			return nil
		}
		_, err = b.mutator.Set(doc, at.At(0), item)
		return err
	default:
		_, err = b.mutator.Set(doc, at.At(0), emptyScalar(items))
		return err
	}
}

func (b *Builder) exists(doc *models.Value, at path.Path) bool {
	_, err := b.mutator.Get(doc, at)
	return err == nil
}

func emptyScalar(s *Schema) *models.Value {
	switch s.kind() {
	case "string":
		return models.NewString("")
	case "number", "integer":
		return models.NewNumber(0)
	case "boolean":
		return models.NewBool(false)
	case "object":
		return models.NewObject()
	case "array":
		return models.NewArray()
	default:
		return models.NewNull()
	}
}

// resolve follows $ref and merges allOf until a plain schema remains.
func (b *Builder) resolve(s *Schema, depth int) (*Schema, error) {
	for {
		if depth > maxDepth {
			return nil, fmt.Errorf("schema nesting exceeds %d levels", maxDepth)
		}
		switch {
		case s.Ref != "":
			target, err := b.lookupRef(s.Ref)
			if err != nil {
				return nil, err
			}
			s = target
			depth++
		case len(s.AllOf) > 0:
			merged, err := b.mergeAllOf(s, depth)
			if err != nil {
				return nil, err
			}
			return merged, nil
		default:
			return s, nil
		}
	}
}

// lookupRef resolves local references like "#/definitions/User" or "#/$defs/User"
func (b *Builder) lookupRef(ref string) (*Schema, error) {
	for _, prefix := range []string{"#/definitions/", "#/$defs/"} {
		if !strings.HasPrefix(ref, prefix) {
			continue
		}
		if def, ok := b.definitions[strings.TrimPrefix(ref, prefix)]; ok {
			return def, nil
		}
		return nil, fmt.Errorf("unresolved $ref: %s", ref)
	}

	// External refs not supported yet
	return nil, fmt.Errorf("external $ref not supported: %s", ref)
}

// mergeAllOf merges the properties and required lists of s and its allOf
// members into one object schema
func (b *Builder) mergeAllOf(s *Schema, depth int) (*Schema, error) {
	merged := &Schema{
		Title:      s.Title,
		Properties: make(map[string]*Schema),
		Required:   append([]string(nil), s.Required...),
		Default:    s.Default,
	}
	for k, v := range s.Properties {
		merged.Properties[k] = v
	}

	for _, member := range s.AllOf {
		resolved, err := b.resolve(member, depth+1)
		if err != nil {
			return nil, err
		}

		// Merge properties
		for k, v := range resolved.Properties {
			merged.Properties[k] = v
		}

		// Merge required
		merged.Required = append(merged.Required, resolved.Required...)

		// Take first non-empty title
		if merged.Title == "" && resolved.Title != "" {
			merged.Title = resolved.Title
		}
	}

	merged.Type = SchemaType{Types: []string{"object"}}
	return merged, nil
}
