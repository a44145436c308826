package sitecontent

import (
	"io"

	"github.com/google/uuid"
)

// Request DTOs

// RecordInput carries the fields a caller supplied on create or update. Only
// keys present in Text and Attributes are applied.
type RecordInput struct {
	// Text is keyed by bare name ("title") or language key ("title_az"). A
	// bare value is taken as SourceLanguage text.
	Text       map[string]string
	Attributes map[string]any

	AutoTranslate  bool
	SourceLanguage Language
}

// CreateRecordRequest contains parameters for creating a record
type CreateRecordRequest struct {
	Kind      Kind
	Input     RecordInput
	CreatedBy string
}

// UpdateRecordRequest contains parameters for a partial record update
type UpdateRecordRequest struct {
	Kind  Kind
	ID    uuid.UUID
	Input RecordInput
}

// UploadRequest describes a single uploaded file
type UploadRequest struct {
	Kind Kind
	// Field is the attribute the upload is for, e.g. "image" or "pdf_url".
	Field       string
	Asset       AssetKind
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}
