package sitecontent

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrRecordNotFound indicates a record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrAdminNotFound indicates an admin account was not found
	ErrAdminNotFound = errors.New("admin not found")

	// ErrDuplicateAdmin indicates the email or username is already taken
	ErrDuplicateAdmin = errors.New("admin with this email or username already exists")

	// ErrInvalidCredentials indicates a failed login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownKind indicates a kind with no registered schema
	ErrUnknownKind = errors.New("unknown content kind")

	// ErrUnsupportedFileType indicates an upload with a rejected extension or MIME type
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates an upload over the size limit
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoBlobStore indicates an upload was attempted with no storage configured
	ErrNoBlobStore = errors.New("no blob store configured")

	// ErrObjectNotFound indicates a missing blob store object
	ErrObjectNotFound = errors.New("object not found")
)

// ValidationError reports a request that failed input validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RecordError represents an error related to record operations
type RecordError struct {
	Kind Kind
	ID   uuid.UUID
	Op   string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s operation %s failed for record %s: %v", e.Kind, e.Op, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
