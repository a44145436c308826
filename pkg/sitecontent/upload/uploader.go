// Package upload validates incoming files and stores them in a blob store
// under generated keys.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/metrics"
)

// DefaultMaxSize is the per-file upload limit (5 MiB).
const DefaultMaxSize int64 = 5 << 20

var allowed = map[sitecontent.AssetKind]map[string]string{
	sitecontent.AssetImage: {
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
	},
	sitecontent.AssetRaw: {
		".pdf": "application/pdf",
	},
}

// AssetUploader implements sitecontent.Uploader on top of a BlobStore.
type AssetUploader struct {
	store   sitecontent.BlobStore
	keys    KeyGenerator
	maxSize int64
}

// Option configures an AssetUploader
type Option func(*AssetUploader)

// WithKeyGenerator overrides the object key strategy
func WithKeyGenerator(g KeyGenerator) Option {
	return func(u *AssetUploader) {
		u.keys = g
	}
}

// WithMaxSize overrides DefaultMaxSize
func WithMaxSize(n int64) Option {
	return func(u *AssetUploader) {
		if n > 0 {
			u.maxSize = n
		}
	}
}

// New creates an uploader writing to store
func New(store sitecontent.BlobStore, opts ...Option) *AssetUploader {
	u := &AssetUploader{
		store:   store,
		keys:    NewTimestampGenerator(),
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// MaxSize returns the per-file limit in bytes
func (u *AssetUploader) MaxSize() int64 {
	return u.maxSize
}

// Upload validates req and stores the file.
func (u *AssetUploader) Upload(ctx context.Context, req sitecontent.UploadRequest) (*sitecontent.Asset, error) {
	asset := req.Asset
	if asset == "" {
		asset = sitecontent.AssetImage
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	mimeType, ok := allowed[asset][ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sitecontent.ErrUnsupportedFileType, unsupportedMessage(asset))
	}
	if ct := mediaType(req.ContentType); ct != "" && ct != "application/octet-stream" && !matches(asset, ct) {
		return nil, fmt.Errorf("%w: %s", sitecontent.ErrUnsupportedFileType, unsupportedMessage(asset))
	}
	if req.Size > u.maxSize {
		return nil, sitecontent.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(req.Reader, u.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > u.maxSize {
		return nil, sitecontent.ErrFileTooLarge
	}
	if sniffed := mediaType(http.DetectContentType(data)); asset == sitecontent.AssetRaw && sniffed != "application/pdf" {
		return nil, fmt.Errorf("%w: %s", sitecontent.ErrUnsupportedFileType, unsupportedMessage(asset))
	}

	folder := string(req.Kind)
	if schema, ok := sitecontent.SchemaFor(req.Kind); ok && schema.Folder != "" {
		folder = schema.Folder
	}
	key := u.keys.GenerateKey(&KeyMetadata{Folder: folder, Prefix: req.Field, Ext: ext})

	if err := u.store.Upload(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return nil, &sitecontent.StorageError{Key: key, Op: "upload", Err: err}
	}
	metrics.UploadedBytes.WithLabelValues(string(asset)).Add(float64(len(data)))

	slog.Info("Asset uploaded", "kind", req.Kind, "field", req.Field, "key", key, "size", len(data))
	return &sitecontent.Asset{URL: u.store.URL(key), Key: key, Kind: asset}, nil
}

func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func matches(asset sitecontent.AssetKind, ct string) bool {
	for _, m := range allowed[asset] {
		if m == ct {
			return true
		}
	}
	// image/jpg is common in the wild
	return asset == sitecontent.AssetImage && ct == "image/jpg"
}

func unsupportedMessage(asset sitecontent.AssetKind) string {
	if asset == sitecontent.AssetRaw {
		return "only PDF files are allowed"
	}
	return "only image files are allowed (jpg, jpeg, png, gif, webp)"
}
