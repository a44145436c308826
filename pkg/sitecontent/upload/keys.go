package upload

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyGenerator defines the interface for object key generation strategies
type KeyGenerator interface {
	// GenerateKey creates an object key for storage backends
	GenerateKey(meta *KeyMetadata) string
}

// KeyMetadata contains information that influences key generation
type KeyMetadata struct {
	// Folder groups assets per collection, e.g. "news"
	Folder string
	// Prefix names the upload field, e.g. "image" or "pdf"
	Prefix string
	// Ext is the lowercased file extension including the dot
	Ext string
}

// TimestampGenerator produces keys of the form
// {folder}/{prefix}-{unix millis}-{random}{ext}.
type TimestampGenerator struct {
	Now    func() time.Time
	Random func() string
}

// NewTimestampGenerator returns a generator using the wall clock and random
// eight-character suffixes.
func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{
		Now: time.Now,
		Random: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		},
	}
}

func (g *TimestampGenerator) GenerateKey(meta *KeyMetadata) string {
	prefix := sanitizePathComponent(meta.Prefix)
	if prefix == "" {
		prefix = "file"
	}
	name := fmt.Sprintf("%s-%d-%s%s", prefix, g.Now().UnixMilli(), g.Random(), meta.Ext)

	folder := sanitizePathComponent(meta.Folder)
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// CustomFuncGenerator allows callers to provide their own key generation function
type CustomFuncGenerator func(meta *KeyMetadata) string

func (f CustomFuncGenerator) GenerateKey(meta *KeyMetadata) string {
	return f(meta)
}

// sanitizePathComponent keeps a single safe path segment
func sanitizePathComponent(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
		"..", "_",
	)
	return strings.ToLower(replacer.Replace(strings.TrimSpace(s)))
}
