package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/api"
	"github.com/tendant/site-content/pkg/sitecontent/auth"
	"github.com/tendant/site-content/pkg/sitecontent/repo/memory"
	repopg "github.com/tendant/site-content/pkg/sitecontent/repo/postgres"
	fsstorage "github.com/tendant/site-content/pkg/sitecontent/storage/fs"
	memorystorage "github.com/tendant/site-content/pkg/sitecontent/storage/memory"
	s3storage "github.com/tendant/site-content/pkg/sitecontent/storage/s3"
	"github.com/tendant/site-content/pkg/sitecontent/translate"
	"github.com/tendant/site-content/pkg/sitecontent/upload"
)

// Repository is the combined record and admin store
type Repository interface {
	sitecontent.Repository
	sitecontent.AdminRepository
}

// Components are the wired parts of a running server
type Components struct {
	Repository Repository
	Store      sitecontent.BlobStore
	Translator *translate.Orchestrator
	Uploader   *upload.AssetUploader
	Service    sitecontent.Service
	Auth       *auth.Service

	pool *pgxpool.Pool
}

// Close releases the database pool, if any
func (c *Components) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// Build wires repository, storage, translation, service and auth from the
// configuration
func (c *ServerConfig) Build(ctx context.Context) (*Components, error) {
	comp := &Components{}

	repo, pool, err := c.buildRepository(ctx)
	if err != nil {
		return nil, err
	}
	comp.Repository = repo
	comp.pool = pool

	store, err := c.BuildBlobStore()
	if err != nil {
		comp.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageType, err)
	}
	comp.Store = store

	comp.Translator = c.BuildTranslator()
	comp.Uploader = upload.New(store, upload.WithMaxSize(c.MaxUploadBytes))

	comp.Service, err = sitecontent.New(
		sitecontent.WithRepository(repo),
		sitecontent.WithTranslator(comp.Translator),
		sitecontent.WithUploader(comp.Uploader),
	)
	if err != nil {
		comp.Close()
		return nil, err
	}

	comp.Auth, err = auth.New(repo, c.JWTSecret, auth.WithTokenTTL(c.JWTExpiry))
	if err != nil {
		comp.Close()
		return nil, err
	}

	return comp, nil
}

// APIConfig returns the HTTP server settings for comp
func (c *ServerConfig) APIConfig(comp *Components) api.ServerConfig {
	// The form parser limit must match what the uploader enforces
	maxUpload := c.MaxUploadBytes
	if comp.Uploader != nil {
		maxUpload = comp.Uploader.MaxSize()
	}
	return api.ServerConfig{
		Service: comp.Service,
		Auth:    comp.Auth,
		Store:   comp.Store,
		Name:    c.Name,
		CORS: api.CORSConfig{
			AllowedOrigins: c.AllowedOrigins,
			Production:     c.IsProduction(),
		},
		AllowRegistration: c.AllowRegistration,
		MaxUploadBytes:    maxUpload,
		RequestTimeout:    c.RequestTimeout,
		LoginRateLimit:    c.LoginRateLimit,
	}
}

// BuildTranslator creates the translation orchestrator
func (c *ServerConfig) BuildTranslator() *translate.Orchestrator {
	return translate.NewFromConfig(translate.Config{
		GoogleAPIKey:     c.Translate.GoogleAPIKey,
		MyMemoryEmail:    c.Translate.MyMemoryEmail,
		MyMemoryDisabled: c.Translate.MyMemoryDisabled,
		Timeout:          c.Translate.Timeout,
		RatePerSecond:    c.Translate.RatePerSecond,
		Burst:            c.Translate.Burst,
	})
}

// BuildRepository creates the repository alone, for maintenance jobs. The
// returned func releases it.
func (c *ServerConfig) BuildRepository(ctx context.Context) (Repository, func(), error) {
	repo, pool, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if pool != nil {
			pool.Close()
		}
	}, nil
}

func (c *ServerConfig) buildRepository(ctx context.Context) (Repository, *pgxpool.Pool, error) {
	repo, pool, err := c.openRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}
	return repo, pool, nil
}

func (c *ServerConfig) openRepository(ctx context.Context) (Repository, *pgxpool.Pool, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil, nil
	case "postgres":
		pool, err := c.NewPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repopg.NewWithPool(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// NewPool opens a pgx pool with search_path set to DBSchema
func (c *ServerConfig) NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DatabaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// BuildBlobStore creates the asset store based on the configuration
func (c *ServerConfig) BuildBlobStore() (sitecontent.BlobStore, error) {
	prefix := strings.TrimRight(c.PublicBaseURL, "/") + c.UploadsPrefix

	switch c.StorageType {
	case "memory":
		return memorystorage.New(prefix), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.StorageDir,
			URLPrefix: prefix,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicURL:              c.S3.PublicURL,
			EnableSSE:              c.S3.EnableSSE,
			SSEAlgorithm:           c.S3.SSEAlgorithm,
			SSEKMSKeyID:            c.S3.SSEKMSKeyID,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageType)
	}
}
