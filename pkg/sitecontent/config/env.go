package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// resolveURLs derives the database and storage settings from DATABASE_URL
// and STORAGE_URL.
func (c *ServerConfig) resolveURLs() error {
	if err := c.applyDatabaseURL(); err != nil {
		return err
	}
	return c.applyStorageURL()
}

// applyDatabaseURL auto-detects the database type from the URL
func (c *ServerConfig) applyDatabaseURL() error {
	dbURL := strings.TrimSpace(c.DatabaseURL)

	if dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

// applyStorageURL configures the blob store from STORAGE_URL
func (c *ServerConfig) applyStorageURL() error {
	storageURL := strings.TrimSpace(c.StorageURL)

	if storageURL == "" || storageURL == "memory" || storageURL == "memory://" {
		c.StorageType = "memory"
		return nil
	}

	switch {
	case strings.HasPrefix(storageURL, "file://"):
		return c.applyFilesystemStorage(storageURL)
	case strings.HasPrefix(storageURL, "s3://"):
		return c.applyS3Storage(storageURL)
	}

	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

// applyFilesystemStorage configures filesystem storage from URL
// Format: file:///path/to/uploads or file://./relative/path
func (c *ServerConfig) applyFilesystemStorage(raw string) error {
	path := strings.TrimPrefix(raw, "file://")
	if path == "" {
		return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
	}

	c.StorageType = "fs"
	c.StorageDir = path
	return nil
}

// applyS3Storage configures S3 storage from URL
// Format: s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true
func (c *ServerConfig) applyS3Storage(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	c.StorageType = "s3"
	c.S3.Bucket = u.Host

	q := u.Query()
	if v := q.Get("region"); v != "" {
		c.S3.Region = v
	}
	if v := q.Get("endpoint"); v != "" {
		c.S3.Endpoint = v
	}
	if v := q.Get("public_url"); v != "" {
		c.S3.PublicURL = v
	}
	if v := q.Get("path_style"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
		}
		c.S3.UsePathStyle = b
	}
	return nil
}
