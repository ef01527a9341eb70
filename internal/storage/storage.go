// Package storage provides object storage for exported chart artifacts and
// store backups.
package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/chartsmith/chartsmith/internal/config"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts object storage operations.
// Implementations include S3 and the local filesystem.
type ObjectStorage interface {
	// Put writes data under key and returns its ETag.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Get reads the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ETag returns the content hash used for exported artifacts: the hex form
// of the 128-bit murmur3 digest.
func ETag(data []byte) string {
	h1, h2 := murmur3.Sum128(data)
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(h1 >> (56 - 8*i))
		b[8+i] = byte(h2 >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// ExportKey is the object key of a rendered chart export.
func ExportKey(chartID, theme, format string, data []byte) string {
	return fmt.Sprintf("exports/%s/%s-%s.%s", chartID, theme, ETag(data)[:12], format)
}

// BackupKey is the object key of a store backup taken at t.
func BackupKey(t time.Time) string {
	return fmt.Sprintf("backups/charts-%s.json", t.UTC().Format("20060102T150405Z"))
}

// Open builds the backend selected by cfg.Type. cfg paths must already be
// resolved.
func Open(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		return NewLocalStorage(cfg.Path)
	case "s3":
		s3cfg := DefaultS3Config()
		if cfg.S3.Region != "" {
			s3cfg.Region = cfg.S3.Region
		}
		s3cfg.Endpoint = cfg.S3.Endpoint
		s3cfg.UsePathStyle = cfg.S3.Endpoint != ""
		return NewS3Storage(ctx, cfg.S3.Bucket, s3cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported storage type: %s", cfg.Type)
	}
}
