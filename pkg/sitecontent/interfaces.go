package sitecontent

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Repository defines the interface for record persistence
type Repository interface {
	CreateRecord(ctx context.Context, record *Record) error
	GetRecord(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error)
	ListRecords(ctx context.Context, kind Kind, opts ListOptions) ([]*Record, error)
	UpdateRecord(ctx context.Context, record *Record) error
	DeleteRecord(ctx context.Context, kind Kind, id uuid.UUID) error
}

// AdminRepository defines the interface for admin account persistence
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *Admin) error
	GetAdmin(ctx context.Context, id uuid.UUID) (*Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*Admin, error)
	// AdminExists reports whether an admin with the email or the username exists.
	AdminExists(ctx context.Context, email, username string) (bool, error)
}

// BlobStore defines the interface for asset storage backends
type BlobStore interface {
	// Upload stores the object under objectKey
	Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error

	// Download opens a stored object
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes a stored object
	Delete(ctx context.Context, objectKey string) error

	// URL returns the public URL clients use to fetch the object
	URL(objectKey string) string
}

// Translations maps base field name to language to translated text. A ""
// value means the pair could not be translated.
type Translations map[string]map[Language]string

// Translator fills language variants for a set of source-language fields.
// It never fails; untranslated pairs come back as "".
type Translator interface {
	TranslateFields(ctx context.Context, source Language, fields map[string]string) Translations
}

// Uploader stores an uploaded file and returns a reference to it.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*Asset, error)
}

// Asset is a stored file reference. Only URL is persisted on records.
type Asset struct {
	URL  string    `json:"url"`
	Key  string    `json:"key"`
	Kind AssetKind `json:"kind"`
}
