package memory_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	memorystorage "github.com/tendant/site-content/pkg/sitecontent/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New("/uploads/")
	ctx := context.Background()
	testKey := "news/news-1700000000000-ab12cd34.png"
	testData := "fake image bytes"

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, testKey, strings.NewReader(testData), "image/png")
		assert.NoError(t, err)

		ct, ok := backend.ContentType(testKey)
		assert.True(t, ok)
		assert.Equal(t, "image/png", ct)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		assert.NoError(t, err)
		assert.Equal(t, testData, string(data))
	})

	t.Run("URL", func(t *testing.T) {
		assert.Equal(t, "/uploads/"+testKey, backend.URL(testKey))
		assert.Equal(t, 1, backend.Len())
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "raw/file", strings.NewReader("x"), ""))
		ct, _ := backend.ContentType("raw/file")
		assert.Equal(t, "application/octet-stream", ct)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		_, err := backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, testKey), sitecontent.ErrObjectNotFound)

		_, ok := backend.ContentType(testKey)
		assert.False(t, ok)
	})
}

func TestMemoryBackend_ConcurrentAccess(t *testing.T) {
	backend := memorystorage.New("")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("gallery/%d.png", i)
			assert.NoError(t, backend.Upload(ctx, key, strings.NewReader(key), "image/png"))
			rc, err := backend.Download(ctx, key)
			if assert.NoError(t, err) {
				data, _ := io.ReadAll(rc)
				assert.Equal(t, key, string(data))
				rc.Close()
			}
		}(i)
	}
	wg.Wait()
}
