package sitecontent

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the content library
type Service interface {
	// Record operations
	CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error)
	GetRecord(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error)
	ListRecords(ctx context.Context, kind Kind, opts ListOptions) ([]*Record, error)
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (*Record, error)
	DeleteRecord(ctx context.Context, kind Kind, id uuid.UUID) error

	// Asset upload
	UploadAsset(ctx context.Context, req UploadRequest) (*Asset, error)
}
