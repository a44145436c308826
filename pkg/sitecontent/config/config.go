package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/site-content/pkg/sitecontent/upload"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.resolveURLs(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:              "3000",
		Environment:       "development",
		Name:              "Site Content",
		DatabaseType:      "memory",
		DBSchema:          "public",
		AutoMigrate:       true,
		StorageType:       "memory",
		UploadsPrefix:     "/uploads",
		JWTExpiry:         30 * 24 * time.Hour,
		AllowRegistration: true,
		LoginRateLimit:    10,
		MaxUploadBytes:    upload.DefaultMaxSize,
		RequestTimeout:    60 * time.Second,
		Translate: TranslateConfig{
			Timeout:       10 * time.Second,
			RatePerSecond: 5,
			Burst:         5,
		},
		S3: S3Config{
			Region:       "us-east-1",
			SSEAlgorithm: "AES256",
		},
	}
}

// ServerConfig represents server configuration for the site content service
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT" env-default:"3000"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"` // development, production, testing
	// Name appears in the root "<Name> API is running!" message.
	Name string `yaml:"name" env:"APP_NAME" env-default:"Site Content"`

	// Database configuration. DatabaseType is derived from DatabaseURL.
	DatabaseURL  string `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseType string `yaml:"-"`
	DBSchema     string `yaml:"db_schema" env:"DB_SCHEMA" env-default:"public"`
	AutoMigrate  bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`

	// Storage configuration. StorageType and the backend settings are
	// derived from StorageURL.
	StorageURL    string `yaml:"storage_url" env:"STORAGE_URL"`
	StorageType   string `yaml:"-"`
	StorageDir    string `yaml:"-"`
	UploadsPrefix string `yaml:"uploads_prefix" env:"UPLOADS_PREFIX" env-default:"/uploads"`
	// PublicBaseURL is prepended to locally served upload URLs.
	PublicBaseURL  string        `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"5242880"`
	S3             S3Config      `yaml:"s3"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"60s"`

	// Auth
	JWTSecret         string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiry         time.Duration `yaml:"jwt_expiry" env:"JWT_EXPIRY" env-default:"720h"`
	AllowRegistration bool          `yaml:"allow_registration" env:"ALLOW_REGISTRATION" env-default:"true"`
	LoginRateLimit    int           `yaml:"login_rate_limit" env:"LOGIN_RATE_LIMIT" env-default:"10"`

	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`

	Translate TranslateConfig `yaml:"translate"`
}

// S3Config holds the S3-compatible asset host settings
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `yaml:"endpoint" env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"AWS_S3_USE_PATH_STYLE"`
	PublicURL       string `yaml:"public_url" env:"AWS_S3_PUBLIC_URL"`
	EnableSSE       bool   `yaml:"enable_sse" env:"AWS_S3_ENABLE_SSE"`
	SSEAlgorithm    string `yaml:"sse_algorithm" env:"AWS_S3_SSE_ALGORITHM" env-default:"AES256"`
	SSEKMSKeyID     string `yaml:"sse_kms_key_id" env:"AWS_S3_SSE_KMS_KEY_ID"`
	CreateBucket    bool   `yaml:"create_bucket" env:"AWS_S3_CREATE_BUCKET"`
}

// TranslateConfig holds the translation provider settings
type TranslateConfig struct {
	GoogleAPIKey     string        `yaml:"google_api_key" env:"GOOGLE_TRANSLATE_API_KEY"`
	MyMemoryEmail    string        `yaml:"mymemory_email" env:"MYMEMORY_EMAIL"`
	MyMemoryDisabled bool          `yaml:"mymemory_disabled" env:"MYMEMORY_DISABLED"`
	Timeout          time.Duration `yaml:"timeout" env:"TRANSLATE_TIMEOUT" env-default:"10s"`
	RatePerSecond    float64       `yaml:"rate_per_second" env:"TRANSLATE_RATE_PER_SECOND" env-default:"5"`
	Burst            int           `yaml:"burst" env:"TRANSLATE_BURST" env-default:"5"`
}

// WithEnv reads the configuration from environment variables.
//
// Database:
//
//	DATABASE_URL - "memory" (default) or "postgres://..." / "postgresql://..."
//
// Storage:
//
//	STORAGE_URL - one of:
//	              - "memory://" - In-memory storage (default)
//	              - "file:///path/to/uploads" - Filesystem storage served at /uploads
//	              - "s3://bucket?region=us-east-1&endpoint=http://localhost:9000" - S3 storage
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// WithConfigFile reads a yaml, json, toml or .env file. Environment
// variables still override file values.
func WithConfigFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// IsDevelopment reports whether the server runs in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.StorageDir == "" {
			return errors.New("storage directory is required for filesystem storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	if c.JWTSecret == "" && c.IsProduction() {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	return nil
}
