package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/site-content/pkg/sitecontent"
)

// Repository implements sitecontent.Repository and sitecontent.AdminRepository
// using in-memory storage
type Repository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*sitecontent.Record
	admins  map[uuid.UUID]*sitecontent.Admin
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		records: make(map[uuid.UUID]*sitecontent.Record),
		admins:  make(map[uuid.UUID]*sitecontent.Admin),
	}
}

// Record operations

func (r *Repository) CreateRecord(ctx context.Context, record *sitecontent.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	r.records[record.ID] = record.Clone()
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, kind sitecontent.Kind, id uuid.UUID) (*sitecontent.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists || record.Kind != kind {
		return nil, sitecontent.ErrRecordNotFound
	}
	return record.Clone(), nil
}

func (r *Repository) ListRecords(ctx context.Context, kind sitecontent.Kind, opts sitecontent.ListOptions) ([]*sitecontent.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*sitecontent.Record{}
	for _, record := range r.records {
		if record.Kind == kind {
			result = append(result, record.Clone())
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if opts.Sort == sitecontent.SortOldestFirst {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, record *sitecontent.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.records[record.ID]
	if !exists || existing.Kind != record.Kind {
		return sitecontent.ErrRecordNotFound
	}
	r.records[record.ID] = record.Clone()
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, kind sitecontent.Kind, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.records[id]
	if !exists || existing.Kind != kind {
		return sitecontent.ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

// Admin operations

func (r *Repository) CreateAdmin(ctx context.Context, admin *sitecontent.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.admins {
		if strings.EqualFold(a.Email, admin.Email) || a.Username == admin.Username {
			return sitecontent.ErrDuplicateAdmin
		}
	}
	adminCopy := *admin
	r.admins[admin.ID] = &adminCopy
	return nil
}

func (r *Repository) GetAdmin(ctx context.Context, id uuid.UUID) (*sitecontent.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, exists := r.admins[id]
	if !exists {
		return nil, sitecontent.ErrAdminNotFound
	}
	adminCopy := *admin
	return &adminCopy, nil
}

func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*sitecontent.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, admin := range r.admins {
		if strings.EqualFold(admin.Email, email) {
			adminCopy := *admin
			return &adminCopy, nil
		}
	}
	return nil, sitecontent.ErrAdminNotFound
}

func (r *Repository) AdminExists(ctx context.Context, email, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, admin := range r.admins {
		if strings.EqualFold(admin.Email, email) || admin.Username == username {
			return true, nil
		}
	}
	return false, nil
}
