package utils

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// BlobStorage stores bytes under a key and hands them back by key.
// Delete of a missing key is not an error; Open of one returns ErrNotFound.
type BlobStorage interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, *BlobInfo, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type StorageOptions struct {
	Provider        string
	UploadDir       string
	Bucket          string
	CredentialsJSON string
}

func NewBlobStorage(ctx context.Context, opts StorageOptions) (BlobStorage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", StorageProviderLocal:
		return NewLocalStorage(opts.UploadDir)
	case StorageProviderGCS:
		return NewGCSStorage(ctx, opts.Bucket, opts.CredentialsJSON)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", opts.Provider)
	}
}

// CleanObjectKey rejects keys that could escape the storage root.
func CleanObjectKey(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", fmt.Errorf("object key is empty")
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(k, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}
