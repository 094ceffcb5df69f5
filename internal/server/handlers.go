package server

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/jsonedit/internal/coerce"
	"github.com/mcncl/jsonedit/internal/compare"
	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/flatten"
	"github.com/mcncl/jsonedit/internal/form"
	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/path"
	"github.com/mcncl/jsonedit/internal/schema"
	"github.com/mcncl/jsonedit/internal/session"
)

// editPageData feeds the edit page.
type editPageData struct {
	Content        string
	Error          string
	FormContent    template.HTML
	ReadOnly       bool
	PropertyPrompt string
	ItemPrompt     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, indexPage, nil)
}

func (s *Server) handleNew(buffer string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.showDocument(w, buffer)
	}
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, uploadPage, nil)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	content, err := s.readUpload(r, "jsonFile")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.showDocument(w, string(content))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Errorw("failed to parse form", "err", err)
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	if !r.Form.Has("jsonContent") {
		http.Error(w, "Missing jsonContent", http.StatusBadRequest)
		return
	}
	s.showDocument(w, r.Form.Get("jsonContent"))
}

// handleAction writes the submitted inputs into the buffer and then applies
// the edit named by the "op" query parameter.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if s.readOnly {
		http.Error(w, "The editor is read-only", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.Errorw("failed to parse form", "err", err)
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	buffer := r.PostForm.Get("jsonContent")
	query := r.URL.Query()
	confirmer := session.NeverConfirm
	if approved(query.Get("confirm")) {
		confirmer = session.AlwaysConfirm
	}

	sess := s.newSession(buffer, confirmer)
	if _, err := sess.Document(); err != nil {
		s.showInvalid(w, buffer, err)
		return
	}

	err := sess.Submit(formFields(r.PostForm))
	if err == nil {
		err = applyAction(sess, query)
	}
	switch {
	case err == nil, stderrors.Is(err, errors.ErrCancelled):
		s.renderEdit(w, http.StatusOK, sess, "")
	default:
		s.logger.Debugw("action failed", "op", query.Get("op"), "err", err)
		s.renderEdit(w, http.StatusBadRequest, sess, errors.UserFriendlyError(err))
	}
}

// handleSave writes the submitted inputs into the buffer and sends the
// result as a download.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.readOnly {
		http.Error(w, "The editor is read-only", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.Errorw("failed to parse form", "err", err)
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	buffer := r.PostForm.Get("jsonContent")
	sess := s.newSession(buffer, session.AlwaysConfirm)
	if _, err := sess.Document(); err != nil {
		s.showInvalid(w, buffer, err)
		return
	}
	if err := sess.Submit(formFields(r.PostForm)); err != nil {
		s.renderEdit(w, http.StatusBadRequest, sess, errors.UserFriendlyError(err))
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=document.json")
	w.Header().Set("Content-Type", "application/json")
	if _, err := io.WriteString(w, sess.Buffer()); err != nil {
		s.logger.Errorw("failed to write document", "err", err)
	}
}

func (s *Server) handleFlattenPage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, flattenPage, nil)
}

func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	content, err := s.readUpload(r, "jsonFileFlat")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := parser.Load(string(content))
	if err != nil {
		s.logger.Errorw("failed to flatten JSON file", "err", err)
		http.Error(w, "Failed to flatten JSON file: "+err.Error(), http.StatusBadRequest)
		return
	}

	result := "No properties found in JSON"
	if lines := flatten.Lines(doc); len(lines) > 0 {
		result = strings.Join(lines, "\n") + "\n"
	}
	s.writePage(w, http.StatusOK, flattenResultPage, struct{ FlattenResult string }{result})
}

func (s *Server) handleComparePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, comparePage, nil)
}

// handleCompare shows the line diff between two uploaded documents.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var docs [2]*models.Value
	for i, field := range []string{"jsonFile1", "jsonFile2"} {
		content, err := s.readUpload(r, field)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if docs[i], err = parser.Load(string(content)); err != nil {
			s.logger.Errorw("failed to parse JSON file", "field", field, "err", err)
			http.Error(w, fmt.Sprintf("Failed to parse %s JSON file: %s", ordinals[i], err), http.StatusBadRequest)
			return
		}
	}

	diff, err := compare.Documents(docs[0], docs[1], config.DefaultIndent)
	if err != nil {
		s.logger.Errorw("failed to compare JSON files", "err", err)
		http.Error(w, "Failed to compare JSON files: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, http.StatusOK, compareResultPage, struct{ Diff string }{diff})
}

var ordinals = [2]string{"first", "second"}

func (s *Server) handleFromSchemaPage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, fromSchemaPage, nil)
}

// handleFromSchema sends the starter document for an uploaded JSON Schema as
// a download.
func (s *Server) handleFromSchema(w http.ResponseWriter, r *http.Request) {
	content, err := s.readUpload(r, "schemaFile")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	parsed, err := schema.ParseBytes(content)
	if err != nil {
		s.logger.Errorw("failed to parse JSON schema", "err", err)
		http.Error(w, "Failed to parse JSON schema: "+err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := schema.Skeleton(parsed, schema.WithConfig(s.docCfg))
	if err != nil {
		s.logger.Errorw("failed to create JSON document", "err", err)
		http.Error(w, "Failed to create JSON document: "+err.Error(), http.StatusBadRequest)
		return
	}
	text, err := formatter.NewFormatterWithConfig(s.docCfg).Format(doc)
	if err != nil {
		s.logger.Errorw("failed to format JSON document", "err", err)
		http.Error(w, "Failed to format JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=schema_document.json")
	w.Header().Set("Content-Type", "application/json")
	if _, err := io.WriteString(w, text); err != nil {
		s.logger.Errorw("failed to write document", "err", err)
	}
}

func (s *Server) newSession(buffer string, confirmer session.Confirmer) *session.Session {
	return session.New(buffer, session.WithConfig(s.docCfg), session.WithConfirmer(confirmer))
}

// showDocument formats buffer and renders it for editing.
func (s *Server) showDocument(w http.ResponseWriter, buffer string) {
	sess := s.newSession(buffer, session.AlwaysConfirm)
	if err := sess.Normalize(); err != nil {
		s.showInvalid(w, buffer, err)
		return
	}
	s.renderEdit(w, http.StatusOK, sess, "")
}

// showInvalid renders raw as the only property of an object so that it can
// still be edited and saved.
func (s *Server) showInvalid(w http.ResponseWriter, raw string, err error) {
	s.logger.Debugw("invalid document", "err", err)
	wrapper := models.NewObject()
	wrapper.SetField("content", models.NewString(raw))
	s.writePage(w, http.StatusOK, editPage, s.editData(raw, wrapper, "Invalid JSON: "+err.Error()))
}

func (s *Server) renderEdit(w http.ResponseWriter, status int, sess *session.Session, message string) {
	doc, err := sess.Document()
	if err != nil {
		s.showInvalid(w, sess.Buffer(), err)
		return
	}
	s.writePage(w, status, editPage, s.editData(sess.Buffer(), doc, message))
}

func (s *Server) editData(content string, doc *models.Value, message string) editPageData {
	return editPageData{
		Content:        content,
		Error:          message,
		FormContent:    template.HTML(s.renderer.Render(doc)),
		ReadOnly:       s.readOnly,
		PropertyPrompt: session.DeletePropertyPrompt,
		ItemPrompt:     session.DeleteArrayItemPrompt,
	}
}

// writePage renders into memory first so that a template error still yields
// a clean 500.
func (s *Server) writePage(w http.ResponseWriter, status int, t *template.Template, data interface{}) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Errorw("failed to render page", "err", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Errorw("failed to write page", "err", err)
	}
}

func (s *Server) readUpload(r *http.Request, field string) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.logger.Errorw("failed to parse form", "err", err)
		return nil, stderrors.New("Failed to parse form")
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		s.logger.Errorw("failed to get file from form", "field", field, "err", err)
		return nil, stderrors.New("Failed to get file from form")
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Errorw("failed to close file", "err", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		s.logger.Errorw("failed to read file", "err", err)
		return nil, stderrors.New("Failed to read file")
	}
	return content, nil
}

// applyAction runs one edit described by query on sess.
func applyAction(sess *session.Session, query url.Values) error {
	switch op := query.Get("op"); op {
	case "set":
		value := coerce.Infer(query.Get("value"))
		if query.Has("type") {
			var err error
			if value, err = byTag(query.Get("value"), query.Get("type")); err != nil {
				return err
			}
		}
		return sess.Set(query.Get("path"), value)
	case "add-property":
		tag, err := coerce.ParseTypeTag(query.Get("type"))
		if err != nil {
			return errors.NewCoercionError("unknown value type", err)
		}
		return sess.AddProperty(query.Get("path"), query.Get("name"), query.Get("value"), tag)
	case "add-item":
		tag, err := coerce.ParseTypeTag(query.Get("type"))
		if err != nil {
			return errors.NewCoercionError("unknown value type", err)
		}
		return sess.AddArrayItem(query.Get("path"), query.Get("value"), tag)
	case "delete-property":
		return sess.DeleteProperty(query.Get("path"), query.Get("key"))
	case "delete-item":
		index, err := strconv.Atoi(query.Get("index"))
		if err != nil {
			return errors.NewPathError(fmt.Sprintf("invalid array index %q", query.Get("index")), path.ErrMalformedIndex)
		}
		return sess.DeleteArrayItem(query.Get("path"), index)
	case "delete":
		return sess.DeletePath(query.Get("path"))
	default:
		return errors.NewInputError(fmt.Sprintf("unknown action %q", op), nil)
	}
}

func byTag(text, typeName string) (*models.Value, error) {
	tag, err := coerce.ParseTypeTag(typeName)
	if err != nil {
		return nil, errors.NewCoercionError("unknown value type", err)
	}
	value, err := coerce.ByTag(strings.TrimSpace(text), tag)
	if err != nil {
		return nil, errors.NewCoercionError("cannot convert value", err)
	}
	return value, nil
}

// formFields collects the document inputs of a submitted form, sorted by
// path.
func formFields(values url.Values) []session.Field {
	var names []string
	for name := range values {
		if strings.HasPrefix(name, form.FieldPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	fields := make([]session.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, session.Field{
			Path:  strings.TrimPrefix(name, form.FieldPrefix),
			Value: values.Get(name),
		})
	}
	return fields
}

func approved(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}
