package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/auth"
	"github.com/tendant/site-content/pkg/sitecontent/upload"
)

const (
	paramAutoTranslate  = "autoTranslate"
	paramSourceLanguage = "sourceLanguage"
)

// multipart overhead allowed on top of the file size limits
const formOverhead = 1 << 20

// RecordHandler serves the CRUD routes of one content collection
type RecordHandler struct {
	service      sitecontent.Service
	schema       sitecontent.Schema
	requireAdmin func(http.Handler) http.Handler
	maxUpload    int64
}

// NewRecordHandler creates a handler for schema. requireAdmin guards every
// route except a public list.
func NewRecordHandler(service sitecontent.Service, schema sitecontent.Schema, requireAdmin func(http.Handler) http.Handler, maxUpload int64) *RecordHandler {
	if maxUpload <= 0 {
		maxUpload = upload.DefaultMaxSize
	}
	return &RecordHandler{
		service:      service,
		schema:       schema,
		requireAdmin: requireAdmin,
		maxUpload:    maxUpload,
	}
}

// Routes returns the routes for the collection
func (h *RecordHandler) Routes() chi.Router {
	r := chi.NewRouter()

	if h.schema.PublicList {
		r.Get("/", h.ListRecords)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		if !h.schema.PublicList {
			r.Get("/", h.ListRecords)
		}
		r.Get("/{id}", h.GetRecord)
		r.Post("/", h.CreateRecord)
		r.Put("/{id}", h.UpdateRecord)
		r.Delete("/{id}", h.DeleteRecord)
	})

	return r
}

// ListRecords returns every record, newest first
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListRecords(r.Context(), h.schema.Kind, sitecontent.ListOptions{Sort: sitecontent.SortNewestFirst})
	if err != nil {
		slog.Error("Failed to list records", "kind", h.schema.Kind, "error", err)
		h.writeError(w, r, err)
		return
	}

	if isRaw(r) {
		respondList(w, r, records, len(records))
		return
	}
	lang := sitecontent.ParseLanguage(r.URL.Query().Get("lang"))
	respondList(w, r, sitecontent.ResolveAll(records, lang), len(records))
}

// GetRecord returns a single record
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	record, err := h.service.GetRecord(r.Context(), h.schema.Kind, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if isRaw(r) {
		respondOK(w, r, http.StatusOK, "", record)
		return
	}
	respondOK(w, r, http.StatusOK, "", sitecontent.Resolve(record, sitecontent.ParseLanguage(r.URL.Query().Get("lang"))))
}

// CreateRecord creates a record from a JSON or multipart body
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	input, err := h.readInput(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req := sitecontent.CreateRecordRequest{Kind: h.schema.Kind, Input: input}
	if id, ok := auth.AdminIDFromContext(r.Context()); ok {
		req.CreatedBy = id.String()
	}

	record, err := h.service.CreateRecord(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respondOK(w, r, http.StatusCreated, h.schema.Label+" created successfully", record)
}

// UpdateRecord applies a partial update
func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	// Fail fast before storing any uploaded files
	if _, err := h.service.GetRecord(r.Context(), h.schema.Kind, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	input, err := h.readInput(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	record, err := h.service.UpdateRecord(r.Context(), sitecontent.UpdateRecordRequest{
		Kind:  h.schema.Kind,
		ID:    id,
		Input: input,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respondOK(w, r, http.StatusOK, h.schema.Label+" updated successfully", record)
}

// DeleteRecord removes a record
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRecord(r.Context(), h.schema.Kind, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	respondOK(w, r, http.StatusOK, h.schema.Label+" deleted successfully", nil)
}

// recordID parses the {id} param. A malformed ID is reported as not found.
func (h *RecordHandler) recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Debug("Invalid record ID", "kind", h.schema.Kind, "id", idStr)
		respondError(w, r, http.StatusNotFound, h.schema.Label+" not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *RecordHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, h.schema.Label, h.maxUpload)
}

func isRaw(r *http.Request) bool {
	return r.URL.Query().Get("raw") == "true"
}

// readInput decodes the request body into a RecordInput, storing any
// uploaded files first.
func (h *RecordHandler) readInput(w http.ResponseWriter, r *http.Request) (sitecontent.RecordInput, error) {
	input := sitecontent.RecordInput{
		Text:       make(map[string]string),
		Attributes: make(map[string]any),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		limit := h.maxUpload*int64(h.uploadCount()) + formOverhead
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return input, sitecontent.ErrFileTooLarge
			}
			return input, sitecontent.NewValidationError("body", "Invalid form data: %v", err)
		}
		defer r.MultipartForm.RemoveAll()
		if err := h.readForm(&input, r.MultipartForm.Value); err != nil {
			return input, err
		}
		if err := h.storeFiles(r.Context(), &input, r.MultipartForm.File); err != nil {
			return input, err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return input, sitecontent.NewValidationError("body", "Invalid form data: %v", err)
		}
		if err := h.readForm(&input, r.PostForm); err != nil {
			return input, err
		}
	default:
		body := make(map[string]any)
		r.Body = http.MaxBytesReader(w, r.Body, formOverhead)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return input, sitecontent.NewValidationError("body", "Invalid request body: %v", err)
		}
		if err := h.readJSON(&input, body); err != nil {
			return input, err
		}
	}

	return input, nil
}

func (h *RecordHandler) uploadCount() int {
	n := 0
	for _, attr := range h.schema.Attributes {
		if attr.Type == sitecontent.AttrUpload {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// isTextKey reports whether key is a text field name or one of its language keys
func (h *RecordHandler) isTextKey(key string) bool {
	if _, ok := h.schema.TextField(key); ok {
		return true
	}
	if base, _, ok := sitecontent.SplitLanguageKey(key); ok {
		_, ok = h.schema.TextField(base)
		return ok
	}
	return false
}

func (h *RecordHandler) attribute(name string) (sitecontent.Attribute, bool) {
	for _, attr := range h.schema.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return sitecontent.Attribute{}, false
}

func (h *RecordHandler) readForm(input *sitecontent.RecordInput, values map[string][]string) error {
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v := vals[0]
		switch {
		case key == paramAutoTranslate:
			input.AutoTranslate = parseBool(v)
		case key == paramSourceLanguage:
			input.SourceLanguage = sitecontent.ParseLanguage(v)
		case h.isTextKey(key):
			input.Text[key] = v
		default:
			attr, ok := h.attribute(key)
			if !ok {
				continue
			}
			if attr.Type == sitecontent.AttrObject {
				obj := make(map[string]any)
				if err := json.Unmarshal([]byte(v), &obj); err != nil {
					return sitecontent.NewValidationError(key, "%s must be a JSON object", key)
				}
				input.Attributes[key] = obj
				continue
			}
			input.Attributes[key] = v
		}
	}
	return nil
}

func (h *RecordHandler) readJSON(input *sitecontent.RecordInput, body map[string]any) error {
	for key, raw := range body {
		switch {
		case key == paramAutoTranslate:
			switch v := raw.(type) {
			case bool:
				input.AutoTranslate = v
			case string:
				input.AutoTranslate = parseBool(v)
			}
		case key == paramSourceLanguage:
			if s, ok := raw.(string); ok {
				input.SourceLanguage = sitecontent.ParseLanguage(s)
			}
		case h.isTextKey(key):
			switch v := raw.(type) {
			case nil:
				input.Text[key] = ""
			case string:
				input.Text[key] = v
			default:
				return sitecontent.NewValidationError(key, "%s must be a string", key)
			}
		default:
			if _, ok := h.attribute(key); ok {
				input.Attributes[key] = raw
			}
		}
	}
	return nil
}

func (h *RecordHandler) storeFiles(ctx context.Context, input *sitecontent.RecordInput, files map[string][]*multipart.FileHeader) error {
	for _, attr := range h.schema.Attributes {
		if attr.Type != sitecontent.AttrUpload {
			continue
		}
		headers := files[attr.UploadField()]
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		if fh.Size > h.maxUpload {
			return sitecontent.ErrFileTooLarge
		}

		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		asset, err := h.service.UploadAsset(ctx, sitecontent.UploadRequest{
			Kind:        h.schema.Kind,
			Field:       attr.UploadField(),
			Asset:       attr.Asset,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
		f.Close()
		if err != nil {
			return err
		}
		input.Attributes[attr.Name] = asset.URL
	}
	return nil
}

// parseBool accepts only the literal "true"
func parseBool(s string) bool {
	return strings.TrimSpace(s) == "true"
}
