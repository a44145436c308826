// Package fs stores uploaded assets on local disk, one file per object key.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/site-content/pkg/sitecontent"
)

// Config options for the filesystem store
type Config struct {
	BaseDir   string // Root directory; created when missing
	URLPrefix string // Prefix public URLs are built from, e.g. "/uploads"
}

// Store keeps assets under a single root directory. Object keys map to
// slash-separated relative paths ("news/image-1700000000000-ab12cd34.png").
type Store struct {
	root   string
	prefix string
}

// New creates the store, creating BaseDir if needed
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	root, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{root: root, prefix: strings.TrimRight(config.URLPrefix, "/")}, nil
}

// resolve turns objectKey into a path strictly inside root
func (s *Store) resolve(op, objectKey string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(objectKey))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &sitecontent.StorageError{Key: objectKey, Op: op, Err: errors.New("invalid object key")}
	}
	return full, nil
}

// Upload writes the object through a temp file in the target folder and
// renames it into place, so readers never see a partial asset.
func (s *Store) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	target, err := s.resolve("upload", objectKey)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", objectKey, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", objectKey, err)
	}
	return nil
}

// Download opens the stored file
func (s *Store) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	target, err := s.resolve("download", objectKey)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return nil, sitecontent.ErrObjectNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to open %s: %w", objectKey, err)
	}
	return f, nil
}

// Delete removes the file and any folders it leaves empty
func (s *Store) Delete(ctx context.Context, objectKey string) error {
	target, err := s.resolve("delete", objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return sitecontent.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", objectKey, err)
	}

	s.pruneFolders(filepath.Dir(target))
	return nil
}

// URL returns the public URL for objectKey
func (s *Store) URL(objectKey string) string {
	return s.prefix + "/" + objectKey
}

// pruneFolders walks up from dir removing empty folders, stopping at root.
// os.Remove fails on a non-empty folder, which ends the walk.
func (s *Store) pruneFolders(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root) {
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
