// Package session carries one document through an edit cycle: the buffer is
// loaded, changed by a single action and formatted back into the buffer.
//
// A Session is not safe for concurrent use.
package session

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/coerce"
	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/log"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/mutator"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/path"
)

// errUnchanged lets an edit finish without rewriting the buffer.
var errUnchanged = stderrors.New("document unchanged")

// Field is one form input: a path and the raw text typed into it.
type Field struct {
	Path  string
	Value string
}

// Session owns the document buffer.
type Session struct {
	buffer    string
	mutator   *mutator.Mutator
	formatter *formatter.Formatter
	confirmer Confirmer
	logger    *zap.SugaredLogger
}

// Option configures a Session.
type Option func(*Session)

// WithConfig applies the document indent and edit limits from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) {
		s.mutator = mutator.NewWithConfig(cfg)
		s.formatter = formatter.NewFormatterWithConfig(cfg)
	}
}

// WithConfirmer sets who approves destructive edits. The default approves
// everything.
func WithConfirmer(c Confirmer) Option {
	return func(s *Session) {
		s.confirmer = c
	}
}

// New creates a Session holding buffer.
func New(buffer string, opts ...Option) *Session {
	s := &Session{
		buffer:    buffer,
		mutator:   mutator.New(),
		formatter: formatter.NewFormatter(),
		confirmer: AlwaysConfirm,
		logger:    log.Named("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Buffer returns the current document text.
func (s *Session) Buffer() string {
	return s.buffer
}

// Document loads the buffer. The returned value is a fresh copy; changing it
// does not change the buffer.
func (s *Session) Document() (*models.Value, error) {
	return parser.Load(s.buffer)
}

// Normalize rewrites the buffer in the canonical format.
func (s *Session) Normalize() error {
	return s.Apply(func(doc *models.Value) (*models.Value, error) {
		return doc, nil
	})
}

// Apply runs one edit cycle. fn receives the loaded document and returns the
// new root. When fn or formatting fails the buffer is left as it was.
func (s *Session) Apply(fn func(doc *models.Value) (*models.Value, error)) error {
	doc, err := parser.Load(s.buffer)
	if err != nil {
		return err
	}
	root, err := fn(doc)
	if stderrors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	text, err := s.formatter.Format(root)
	if err != nil {
		return errors.NewOutputError("failed to format document", err)
	}
	s.buffer = text
	return nil
}

// Get returns the value at pathText.
func (s *Session) Get(pathText string) (*models.Value, error) {
	p, err := decode(pathText)
	if err != nil {
		return nil, err
	}
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	v, err := s.mutator.Get(doc, p)
	if err != nil {
		return nil, mutationError("get", p, err)
	}
	return v, nil
}

// Set writes v at pathText, creating missing containers.
func (s *Session) Set(pathText string, v *models.Value) error {
	p, err := decode(pathText)
	if err != nil {
		return err
	}
	return s.Apply(func(doc *models.Value) (*models.Value, error) {
		root, err := s.mutator.Set(doc, p, v)
		if err != nil {
			return nil, mutationError("set", p, err)
		}
		return root, nil
	})
}

// AddProperty adds name under the object at parentPath with text coerced to
// tag. Both name and text are trimmed first.
func (s *Session) AddProperty(parentPath, name, text string, tag coerce.TypeTag) error {
	parent, err := decode(parentPath)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.NewInputError("property name cannot be empty", errors.ErrInvalidName)
	}
	if !path.ValidName(name) {
		return errors.NewInputError(
			fmt.Sprintf("property name %q cannot contain '.', '[' or ']'", name),
			errors.ErrInvalidName,
		)
	}
	value, err := coerce.ByTag(strings.TrimSpace(text), tag)
	if err != nil {
		return errors.NewCoercionError("cannot convert value", err)
	}

	target := parent.Child(name)
	s.logger.Debugf("add property %q as %s", target.String(), value.Kind())
	return s.Apply(func(doc *models.Value) (*models.Value, error) {
		root, err := s.mutator.Set(doc, target, value)
		if err != nil {
			return nil, mutationError("add property", target, err)
		}
		return root, nil
	})
}

// AddArrayItem appends text coerced to tag to the array at arrayPath. A
// missing array is left alone.
func (s *Session) AddArrayItem(arrayPath, text string, tag coerce.TypeTag) error {
	p, err := decode(arrayPath)
	if err != nil {
		return err
	}
	value, err := coerce.ByTag(strings.TrimSpace(text), tag)
	if err != nil {
		return errors.NewCoercionError("cannot convert value", err)
	}

	return s.Apply(func(doc *models.Value) (*models.Value, error) {
		arr, err := s.mutator.Get(doc, p)
		if stderrors.Is(err, mutator.ErrNotFound) {
			s.logger.Debugf("add item skipped: %v", err)
			return nil, errUnchanged
		}
		if err != nil {
			return nil, mutationError("add array item", p, err)
		}
		if arr.Kind() != models.Array {
			return nil, mutationError("add array item", p,
				fmt.Errorf("%w: %s is not an array", mutator.ErrTypeMismatch, arr.Kind()))
		}
		target := p.At(arr.Len())
		root, err := s.mutator.Set(doc, target, value)
		if err != nil {
			return nil, mutationError("add array item", target, err)
		}
		return root, nil
	})
}

// DeleteProperty removes key from the object at parentPath once the
// Confirmer approves. A decline returns errors.ErrCancelled.
func (s *Session) DeleteProperty(parentPath, key string) error {
	parent, err := decode(parentPath)
	if err != nil {
		return err
	}
	return s.confirmedDelete(DeletePropertyPrompt, parent, path.Name(key))
}

// DeleteArrayItem removes element index from the array at arrayPath once the
// Confirmer approves. A decline returns errors.ErrCancelled.
func (s *Session) DeleteArrayItem(arrayPath string, index int) error {
	parent, err := decode(arrayPath)
	if err != nil {
		return err
	}
	if index < 0 {
		return errors.NewPathError(fmt.Sprintf("array index %d is negative", index), path.ErrMalformedIndex)
	}
	return s.confirmedDelete(DeleteArrayItemPrompt, parent, path.Index(index))
}

// DeletePath removes the value at pathText, asking with the prompt that
// matches its last key.
func (s *Session) DeletePath(pathText string) error {
	p, err := decode(pathText)
	if err != nil {
		return err
	}
	parent, final, ok := p.Parent()
	if !ok {
		return mutationError("delete", p, mutator.ErrRootDelete)
	}
	prompt := DeletePropertyPrompt
	if final.IsIndex() {
		prompt = DeleteArrayItemPrompt
	}
	return s.confirmedDelete(prompt, parent, final)
}

func (s *Session) confirmedDelete(prompt string, parent path.Path, final path.Key) error {
	ok, err := s.confirmer.Confirm(prompt)
	if err != nil {
		return errors.NewInputError("failed to read confirmation", err)
	}
	if !ok {
		s.logger.Debugf("delete of %q declined", parent.With(final).String())
		return errors.ErrCancelled
	}
	return s.Apply(func(doc *models.Value) (*models.Value, error) {
		if err := s.mutator.Delete(doc, parent, final); err != nil {
			return nil, mutationError("delete", parent.With(final), err)
		}
		return doc, nil
	})
}

// Submit writes every field into the document in order, inferring each
// value's type from its text. Fields with an empty path are skipped. Field
// paths must be canonical: "a..b" or "[01]" is rejected before anything is
// written.
func (s *Session) Submit(fields []Field) error {
	type edit struct {
		path  path.Path
		value *models.Value
	}
	edits := make([]edit, 0, len(fields))
	for _, f := range fields {
		if f.Path == "" {
			continue
		}
		p, err := path.DecodeExact(f.Path)
		if err != nil {
			return errors.NewPathError(fmt.Sprintf("cannot write form field %q", f.Path), err)
		}
		edits = append(edits, edit{path: p, value: coerce.Infer(f.Value)})
	}

	return s.Apply(func(doc *models.Value) (*models.Value, error) {
		root := doc
		for _, e := range edits {
			var err error
			root, err = s.mutator.Set(root, e.path, e.value)
			if err != nil {
				return nil, mutationError("submit", e.path, err)
			}
		}
		return root, nil
	})
}

func decode(text string) (path.Path, error) {
	p, err := path.Decode(text)
	if err != nil {
		return nil, errors.NewPathError(fmt.Sprintf("cannot decode path %q", text), err)
	}
	return p, nil
}

func mutationError(op string, p path.Path, err error) error {
	where := p.String()
	if where == "" {
		where = "(root)"
	}
	return errors.NewMutationError(fmt.Sprintf("%s at %s failed", op, where), err)
}
