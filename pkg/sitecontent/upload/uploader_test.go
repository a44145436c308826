package upload_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	memoryrepo "github.com/tendant/site-content/pkg/sitecontent/repo/memory"
	memorystorage "github.com/tendant/site-content/pkg/sitecontent/storage/memory"
	"github.com/tendant/site-content/pkg/sitecontent/upload"
)

// 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func fixedKeys() upload.KeyGenerator {
	return &upload.TimestampGenerator{
		Now:    func() time.Time { return time.UnixMilli(1700000000000) },
		Random: func() string { return "ab12cd34" },
	}
}

func setupUploaderTest(t *testing.T, opts ...upload.Option) (*upload.AssetUploader, *memorystorage.Backend) {
	t.Helper()
	store := memorystorage.New("/uploads")
	return upload.New(store, append([]upload.Option{upload.WithKeyGenerator(fixedKeys())}, opts...)...), store
}

func TestUpload_Image(t *testing.T) {
	u, store := setupUploaderTest(t)

	asset, err := u.Upload(context.Background(), sitecontent.UploadRequest{
		Kind:        sitecontent.KindUsageArea,
		Field:       "image",
		FileName:    "Photo.PNG",
		ContentType: "image/png",
		Size:        int64(len(pngBytes)),
		Reader:      bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)

	assert.Equal(t, "usage-areas/image-1700000000000-ab12cd34.png", asset.Key)
	assert.Equal(t, "/uploads/usage-areas/image-1700000000000-ab12cd34.png", asset.URL)
	assert.Equal(t, sitecontent.AssetImage, asset.Kind)

	rc, err := store.Download(context.Background(), asset.Key)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, pngBytes, data)

	ct, _ := store.ContentType(asset.Key)
	assert.Equal(t, "image/png", ct)
}

func TestUpload_PDF(t *testing.T) {
	u, _ := setupUploaderTest(t)

	asset, err := u.Upload(context.Background(), sitecontent.UploadRequest{
		Kind:        sitecontent.KindCertificate,
		Field:       "pdf",
		Asset:       sitecontent.AssetRaw,
		FileName:    "iso-9001.pdf",
		ContentType: "application/pdf",
		Reader:      strings.NewReader("%PDF-1.7\n1 0 obj\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "certificates/pdf-1700000000000-ab12cd34.pdf", asset.Key)
	assert.Equal(t, sitecontent.AssetRaw, asset.Kind)
}

func TestUpload_Rejections(t *testing.T) {
	u, _ := setupUploaderTest(t, upload.WithMaxSize(64))

	tests := []struct {
		name    string
		req     sitecontent.UploadRequest
		wantErr error
	}{
		{
			name:    "extension",
			req:     sitecontent.UploadRequest{Kind: sitecontent.KindNews, FileName: "notes.txt", Reader: strings.NewReader("x")},
			wantErr: sitecontent.ErrUnsupportedFileType,
		},
		{
			name: "declared mime",
			req: sitecontent.UploadRequest{Kind: sitecontent.KindNews, FileName: "a.png", ContentType: "text/html",
				Reader: bytes.NewReader(pngBytes)},
			wantErr: sitecontent.ErrUnsupportedFileType,
		},
		{
			name: "image as pdf",
			req: sitecontent.UploadRequest{Kind: sitecontent.KindCertificate, Asset: sitecontent.AssetRaw, FileName: "a.png",
				Reader: bytes.NewReader(pngBytes)},
			wantErr: sitecontent.ErrUnsupportedFileType,
		},
		{
			name: "pdf extension without pdf content",
			req: sitecontent.UploadRequest{Kind: sitecontent.KindCertificate, Asset: sitecontent.AssetRaw, FileName: "a.pdf",
				Reader: strings.NewReader("<html></html>")},
			wantErr: sitecontent.ErrUnsupportedFileType,
		},
		{
			name:    "declared size",
			req:     sitecontent.UploadRequest{Kind: sitecontent.KindNews, FileName: "a.png", Size: 65, Reader: bytes.NewReader(pngBytes)},
			wantErr: sitecontent.ErrFileTooLarge,
		},
		{
			name:    "actual size",
			req:     sitecontent.UploadRequest{Kind: sitecontent.KindNews, FileName: "a.png", Reader: bytes.NewReader(make([]byte, 65))},
			wantErr: sitecontent.ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Upload(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpload_ServiceIntegration(t *testing.T) {
	u, _ := setupUploaderTest(t)
	svc, err := sitecontent.New(
		sitecontent.WithRepository(memoryrepo.New()),
		sitecontent.WithUploader(u),
	)
	require.NoError(t, err)

	asset, err := svc.UploadAsset(context.Background(), sitecontent.UploadRequest{
		Kind: sitecontent.KindGallery, Field: "image", FileName: "g.gif",
		Reader: strings.NewReader("GIF89a"),
	})
	require.NoError(t, err)
	assert.Equal(t, "gallery/image-1700000000000-ab12cd34.gif", asset.Key)
}

func TestTimestampGenerator_Sanitizes(t *testing.T) {
	key := fixedKeys().GenerateKey(&upload.KeyMetadata{Folder: "../etc", Prefix: "My File", Ext: ".png"})
	assert.Equal(t, "__etc/my_file-1700000000000-ab12cd34.png", key)

	key = fixedKeys().GenerateKey(&upload.KeyMetadata{Ext: ".pdf"})
	assert.Equal(t, "file-1700000000000-ab12cd34.pdf", key)

	custom := upload.CustomFuncGenerator(func(meta *upload.KeyMetadata) string { return "fixed" + meta.Ext })
	assert.Equal(t, "fixed.jpg", custom.GenerateKey(&upload.KeyMetadata{Ext: ".jpg"}))
}
