// Package presets wires a ready-to-use content service for common setups.
package presets

import (
	"fmt"
	"os"
	"testing"

	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/auth"
	memoryrepo "github.com/tendant/site-content/pkg/sitecontent/repo/memory"
	fsstorage "github.com/tendant/site-content/pkg/sitecontent/storage/fs"
	memorystorage "github.com/tendant/site-content/pkg/sitecontent/storage/memory"
	"github.com/tendant/site-content/pkg/sitecontent/translate"
	"github.com/tendant/site-content/pkg/sitecontent/upload"
	"golang.org/x/crypto/bcrypt"
)

// TestSecret signs tokens issued by NewTesting
const TestSecret = "test-secret"

// Env is a wired service plus the backends behind it
type Env struct {
	Service    sitecontent.Service
	Auth       *auth.Service
	Repository *memoryrepo.Repository
	Store      sitecontent.BlobStore
}

// NewDevelopment creates a service for local development.
//
// Records live in memory; uploads persist under ./dev-data and are served
// from /uploads. Translation uses the free MyMemory provider. The returned
// cleanup func removes the storage directory.
func NewDevelopment(opts ...DevelopmentOption) (*Env, func(), error) {
	cfg := &devConfig{
		storageDir: "./dev-data",
		secret:     "dev-secret",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store, err := fsstorage.New(fsstorage.Config{
		BaseDir:   cfg.storageDir,
		URLPrefix: "/uploads",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	translator := cfg.translator
	if translator == nil {
		translator = translate.NewFromConfig(translate.Config{})
	}

	env, err := build(store, translator, cfg.secret, upload.DefaultMaxSize, bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		os.RemoveAll(cfg.storageDir)
	}
	return env, cleanup, nil
}

// NewTesting creates an isolated in-memory service for tests. Passwords are
// hashed at bcrypt.MinCost.
func NewTesting(t testing.TB, opts ...TestingOption) *Env {
	t.Helper()

	cfg := &testConfig{maxUpload: upload.DefaultMaxSize}
	for _, opt := range opts {
		opt(cfg)
	}

	env, err := build(memorystorage.New("/uploads"), cfg.translator, TestSecret, cfg.maxUpload, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}
	return env
}

func build(store sitecontent.BlobStore, translator sitecontent.Translator, secret string, maxUpload int64, cost int) (*Env, error) {
	repo := memoryrepo.New()

	options := []sitecontent.Option{
		sitecontent.WithRepository(repo),
		sitecontent.WithUploader(upload.New(store, upload.WithMaxSize(maxUpload))),
	}
	if translator != nil {
		options = append(options, sitecontent.WithTranslator(translator))
	}

	svc, err := sitecontent.New(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	authService, err := auth.New(repo, secret, auth.WithBcryptCost(cost))
	if err != nil {
		return nil, err
	}

	return &Env{
		Service:    svc,
		Auth:       authService,
		Repository: repo,
		Store:      store,
	}, nil
}

type devConfig struct {
	storageDir string
	secret     string
	translator sitecontent.Translator
}

type testConfig struct {
	translator sitecontent.Translator
	maxUpload  int64
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevStorage sets the development storage directory
func WithDevStorage(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.storageDir = dir
	}
}

// WithDevTranslator replaces the MyMemory translator
func WithDevTranslator(t sitecontent.Translator) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.translator = t
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestTranslator sets the translator; without one, auto-translation
// falls back to copying the source text.
func WithTestTranslator(t sitecontent.Translator) TestingOption {
	return func(cfg *testConfig) {
		cfg.translator = t
	}
}

// WithTestMaxUpload sets the upload size limit
func WithTestMaxUpload(n int64) TestingOption {
	return func(cfg *testConfig) {
		cfg.maxUpload = n
	}
}
