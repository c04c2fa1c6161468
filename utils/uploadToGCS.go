package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage stores blobs in a Cloud Storage bucket.
type GCSStorage struct {
	client *storage.Client
	bucket string
}

// NewGCSStorage prefers ADC; GCS_CREDENTIALS_JSON overrides it when set.
func NewGCSStorage(ctx context.Context, bucket string, credentialsJSON string) (*GCSStorage, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %v", bucket, err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	objectName, err := CleanObjectKey(key)
	if err != nil {
		return err
	}
	// cancelling the writer's context aborts the upload
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(wctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, data); err != nil {
		cancel()
		_ = wc.Close()
		return fmt.Errorf("failed to upload file to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}

func (s *GCSStorage) Open(ctx context.Context, key string) (io.ReadCloser, *BlobInfo, error) {
	objectName, err := CleanObjectKey(key)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return r, &BlobInfo{Key: key, ContentType: r.Attrs.ContentType, Size: r.Attrs.Size}, nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	objectName, err := CleanObjectKey(key)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}
