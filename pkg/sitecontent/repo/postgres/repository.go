package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/site-content/pkg/sitecontent"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements sitecontent.Repository and sitecontent.AdminRepository
// using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.TableName == "admins" {
				return sitecontent.ErrDuplicateAdmin
			}
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Record operations

func (r *Repository) CreateRecord(ctx context.Context, record *sitecontent.Record) error {
	fields, attrs, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (
			id, kind, fields, attributes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		record.ID, string(record.Kind), fields, attrs,
		record.CreatedBy, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create record", err)
	}
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, kind sitecontent.Kind, id uuid.UUID) (*sitecontent.Record, error) {
	query := `
		SELECT id, kind, fields, attributes, created_by, created_at, updated_at
		FROM records WHERE id = $1 AND kind = $2`

	record, err := scanRecord(r.db.QueryRow(ctx, query, id, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sitecontent.ErrRecordNotFound
		}
		return nil, r.handlePostgresError("get record", err)
	}
	return record, nil
}

func (r *Repository) ListRecords(ctx context.Context, kind sitecontent.Kind, opts sitecontent.ListOptions) ([]*sitecontent.Record, error) {
	order := "DESC"
	if opts.Sort == sitecontent.SortOldestFirst {
		order = "ASC"
	}
	query := `
		SELECT id, kind, fields, attributes, created_by, created_at, updated_at
		FROM records WHERE kind = $1
		ORDER BY created_at ` + order

	rows, err := r.db.Query(ctx, query, string(kind))
	if err != nil {
		return nil, r.handlePostgresError("list records", err)
	}
	defer rows.Close()

	result := []*sitecontent.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan record", err)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list records", err)
	}
	return result, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, record *sitecontent.Record) error {
	fields, attrs, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE records SET
			fields = $3, attributes = $4, created_by = $5, updated_at = $6
		WHERE id = $1 AND kind = $2`

	tag, err := r.db.Exec(ctx, query,
		record.ID, string(record.Kind), fields, attrs, record.CreatedBy, record.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update record", err)
	}
	if tag.RowsAffected() == 0 {
		return sitecontent.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, kind sitecontent.Kind, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM records WHERE id = $1 AND kind = $2`, id, string(kind))
	if err != nil {
		return r.handlePostgresError("delete record", err)
	}
	if tag.RowsAffected() == 0 {
		return sitecontent.ErrRecordNotFound
	}
	return nil
}

// Admin operations

func (r *Repository) CreateAdmin(ctx context.Context, admin *sitecontent.Admin) error {
	query := `
		INSERT INTO admins (
			id, username, email, password_hash, role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		admin.ID, admin.Username, admin.Email, admin.PasswordHash,
		admin.Role, admin.CreatedAt, admin.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create admin", err)
	}
	return nil
}

func (r *Repository) GetAdmin(ctx context.Context, id uuid.UUID) (*sitecontent.Admin, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM admins WHERE id = $1`
	return r.getAdmin(ctx, "get admin", query, id)
}

func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*sitecontent.Admin, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM admins WHERE lower(email) = lower($1)`
	return r.getAdmin(ctx, "get admin by email", query, email)
}

func (r *Repository) AdminExists(ctx context.Context, email, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM admins WHERE lower(email) = lower($1) OR username = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email, username).Scan(&exists); err != nil {
		return false, r.handlePostgresError("admin exists", err)
	}
	return exists, nil
}

func (r *Repository) getAdmin(ctx context.Context, operation, query string, arg any) (*sitecontent.Admin, error) {
	var admin sitecontent.Admin
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&admin.ID, &admin.Username, &admin.Email, &admin.PasswordHash,
		&admin.Role, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sitecontent.ErrAdminNotFound
		}
		return nil, r.handlePostgresError(operation, err)
	}
	return &admin, nil
}

// Helpers

func encodeRecord(record *sitecontent.Record) (fields, attrs []byte, err error) {
	fields, err = json.Marshal(sitecontent.EncodeFields(record.Fields))
	if err != nil {
		return nil, nil, fmt.Errorf("encode fields: %w", err)
	}
	if record.Attributes == nil {
		attrs = []byte("{}")
	} else if attrs, err = json.Marshal(record.Attributes); err != nil {
		return nil, nil, fmt.Errorf("encode attributes: %w", err)
	}
	return fields, attrs, nil
}

func scanRecord(row pgx.Row) (*sitecontent.Record, error) {
	var (
		record        sitecontent.Record
		kind          string
		fields, attrs []byte
	)
	if err := row.Scan(&record.ID, &kind, &fields, &attrs,
		&record.CreatedBy, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.Kind = sitecontent.Kind(kind)

	var flat map[string]string
	if err := json.Unmarshal(fields, &flat); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	var known []string
	if schema, ok := sitecontent.SchemaFor(record.Kind); ok {
		known = schema.TextFieldNames()
	}
	record.Fields = sitecontent.DecodeFields(flat, known...)

	record.Attributes = make(map[string]any)
	if err := json.Unmarshal(attrs, &record.Attributes); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return &record, nil
}
