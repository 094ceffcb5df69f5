// Package mutator reads and edits a JSON document at a decoded path.
//
// Get and Delete never create structure. Set creates every missing container
// on the way to its target, choosing an array when the following key is an
// index and an object otherwise.
package mutator

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/log"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/path"
)

var (
	// ErrNotFound reports that a key along the path does not exist.
	ErrNotFound = stderrors.New("path not found")
	// ErrTypeMismatch reports a key whose kind does not match the container
	// it is applied to: an index into a non-array or a name into a non-object.
	ErrTypeMismatch = stderrors.New("key does not match container type")
	// ErrIndexTooLarge reports a write that would pad an array with more
	// nulls than the configured limit.
	ErrIndexTooLarge = stderrors.New("array index too far past the end")
	// ErrRootDelete reports an attempt to delete the document itself.
	ErrRootDelete = stderrors.New("cannot delete the document root")
)

// Mutator applies path operations to documents.
type Mutator struct {
	maxPadding int
	logger     *zap.SugaredLogger
}

// New creates a Mutator with the default limits.
func New() *Mutator {
	return NewWithConfig(config.NewConfig())
}

// NewWithConfig creates a Mutator using the limits from cfg.
func NewWithConfig(cfg *config.Config) *Mutator {
	return &Mutator{
		maxPadding: cfg.Limits.MaxArrayPadding,
		logger:     log.Named("mutator"),
	}
}

// Get returns the value at p. A missing key yields ErrNotFound.
func (m *Mutator) Get(doc *models.Value, p path.Path) (*models.Value, error) {
	cur := doc
	for i, key := range p {
		if err := checkKind(cur, key, p[:i+1]); err != nil {
			return nil, err
		}
		next, ok := child(cur, key)
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "at %q", p[:i+1].String())
		}
		cur = next
	}
	return cur, nil
}

// Set writes v at p and returns the document root. An empty path returns v
// as the new root. Nothing is modified when an error is returned.
func (m *Mutator) Set(doc *models.Value, p path.Path, v *models.Value) (*models.Value, error) {
	if v == nil {
		v = models.NewNull()
	}
	if p.IsRoot() {
		return v, nil
	}
	if err := m.checkSet(doc, p); err != nil {
		return nil, err
	}

	cur := doc
	for i, key := range p[:len(p)-1] {
		next, ok := child(cur, key)
		if !ok {
			next = emptyContainerFor(p[i+1])
			m.log().Debugf("created %s at %q", next.Kind(), p[:i+1].String())
			assign(cur, key, next)
		}
		cur = next
	}
	assign(cur, p[len(p)-1], v)
	return doc, nil
}

// checkSet walks p the way Set will and reports the first error Set would
// hit, so that a failing Set leaves the document untouched.
func (m *Mutator) checkSet(doc *models.Value, p path.Path) error {
	cur := doc
	for i, key := range p {
		if err := checkKind(cur, key, p[:i+1]); err != nil {
			return err
		}
		if err := m.checkPadding(cur.Len(), key, p[:i+1]); err != nil {
			return err
		}
		if i == len(p)-1 {
			return nil
		}
		next, ok := child(cur, key)
		if !ok {
			// Everything below here is created fresh with matching kinds.
			return m.checkFreshPadding(p[i+1:], p[:i+1])
		}
		cur = next
	}
	return nil
}

func (m *Mutator) checkFreshPadding(rest, prefix path.Path) error {
	for i, key := range rest {
		if err := m.checkPadding(0, key, prefix.With(rest[:i+1]...)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mutator) checkPadding(length int, key path.Key, at path.Path) error {
	if m.maxPadding <= 0 || !key.IsIndex() {
		return nil
	}
	if pad := key.Index() - length; pad > m.maxPadding {
		return errors.Wrapf(ErrIndexTooLarge, "at %q: %d nulls needed, limit is %d", at.String(), pad, m.maxPadding)
	}
	return nil
}

// Delete removes final from the container at parent. A missing parent or a
// missing final key is a no-op. Array elements after the removed one shift
// left; object properties are removed entirely.
func (m *Mutator) Delete(doc *models.Value, parent path.Path, final path.Key) error {
	container, err := m.Get(doc, parent)
	if stderrors.Is(err, ErrNotFound) {
		m.log().Debugf("delete skipped, %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	if err := checkKind(container, final, parent.With(final)); err != nil {
		return err
	}

	if final.IsIndex() {
		container.RemoveIndex(final.Index())
	} else {
		container.DeleteField(final.Name())
	}
	return nil
}

// DeletePath removes the value at p. The root cannot be deleted.
func (m *Mutator) DeletePath(doc *models.Value, p path.Path) error {
	parent, final, ok := p.Parent()
	if !ok {
		return ErrRootDelete
	}
	return m.Delete(doc, parent, final)
}

func (m *Mutator) log() *zap.SugaredLogger {
	if m.logger != nil {
		return m.logger
	}
	return log.Named("mutator")
}

func checkKind(container *models.Value, key path.Key, at path.Path) error {
	want := models.Object
	if key.IsIndex() {
		want = models.Array
	}
	if got := container.Kind(); got != want {
		return errors.Wrapf(ErrTypeMismatch, "at %q: %s key applied to %s", at.String(), keyKind(key), got)
	}
	return nil
}

func keyKind(key path.Key) string {
	if key.IsIndex() {
		return "index"
	}
	return "name"
}

func child(container *models.Value, key path.Key) (*models.Value, bool) {
	if key.IsIndex() {
		return container.Index(key.Index())
	}
	return container.Field(key.Name())
}

func assign(container *models.Value, key path.Key, v *models.Value) {
	if key.IsIndex() {
		container.SetIndex(key.Index(), v)
		return
	}
	container.SetField(key.Name(), v)
}

// emptyContainerFor picks the container a missing segment must become so
// that next can be applied to it.
func emptyContainerFor(next path.Key) *models.Value {
	if next.IsIndex() {
		return models.NewArray()
	}
	return models.NewObject()
}

// std follows the process logger as it is reconfigured.
var std = &Mutator{maxPadding: config.NewConfig().Limits.MaxArrayPadding}

// Get returns the value at p using the default Mutator.
func Get(doc *models.Value, p path.Path) (*models.Value, error) {
	return std.Get(doc, p)
}

// Set writes v at p using the default Mutator.
func Set(doc *models.Value, p path.Path, v *models.Value) (*models.Value, error) {
	return std.Set(doc, p, v)
}

// Delete removes final from the container at parent using the default Mutator.
func Delete(doc *models.Value, parent path.Path, final path.Key) error {
	return std.Delete(doc, parent, final)
}

// DeletePath removes the value at p using the default Mutator.
func DeletePath(doc *models.Value, p path.Path) error {
	return std.DeletePath(doc, p)
}
