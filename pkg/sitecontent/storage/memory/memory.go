// Package memory keeps uploaded assets in process memory. Used by tests and
// the memory:// storage URL.
package memory

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/tendant/site-content/pkg/sitecontent"
)

type object struct {
	data        []byte
	contentType string
}

// Backend is an in-memory sitecontent.BlobStore
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	prefix  string
}

// New creates an empty store. URLs are urlPrefix + "/" + key.
func New(urlPrefix string) *Backend {
	return &Backend{
		objects: make(map[string]object),
		prefix:  strings.TrimRight(urlPrefix, "/"),
	}
}

// Upload buffers the object
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return &sitecontent.StorageError{Key: objectKey, Op: "upload", Err: err}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	b.objects[objectKey] = object{data: data, contentType: contentType}
	b.mu.Unlock()
	return nil
}

// Download returns a reader over the stored bytes
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, ok := b.get(objectKey)
	if !ok {
		return nil, sitecontent.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// ContentType returns the content type recorded at upload
func (b *Backend) ContentType(objectKey string) (string, bool) {
	obj, ok := b.get(objectKey)
	return obj.contentType, ok
}

// Delete drops the object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.objects[objectKey]; !ok {
		return sitecontent.ErrObjectNotFound
	}
	delete(b.objects, objectKey)
	return nil
}

// URL returns the public URL for objectKey
func (b *Backend) URL(objectKey string) string {
	return b.prefix + "/" + objectKey
}

// Len reports how many objects are stored
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

func (b *Backend) get(objectKey string) (object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[objectKey]
	return obj, ok
}
