package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"sales_visits_backend/platform/config"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const backendGCS = "gcs"

// GCSBackend implements Backend on Google Cloud Storage.
type GCSBackend struct {
	client    *gcs.Client
	projectID string
}

// NewGCSBackend creates a GCS client using the configured credentials file,
// or application default credentials when none is set.
func NewGCSBackend(ctx context.Context, cfg config.GCSConfig) (*GCSBackend, error) {
	var opts []option.ClientOption
	if file := cfg.GetGoogleCredentialsFile(); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSBackend{client: client, projectID: cfg.GetGCPProjectID()}, nil
}

// Close releases the underlying client.
func (b *GCSBackend) Close() error {
	return b.client.Close()
}

// Name implements Backend.
func (b *GCSBackend) Name() string { return backendGCS }

// EnsureBucket creates the bucket if it doesn't exist.
func (b *GCSBackend) EnsureBucket(ctx context.Context, bucket string) error {
	handle := b.client.Bucket(bucket)
	_, err := handle.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gcs.ErrBucketNotExist) {
		return &BackendError{Backend: backendGCS, Op: "bucket attrs", Err: err}
	}
	if err := handle.Create(ctx, b.projectID, nil); err != nil {
		return &BackendError{Backend: backendGCS, Op: "create bucket " + bucket, Err: err}
	}
	return nil
}

// Put implements Backend.
func (b *GCSBackend) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	w := b.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return &BackendError{Backend: backendGCS, Op: "write " + key, Err: err}
	}
	if err := w.Close(); err != nil {
		return &BackendError{Backend: backendGCS, Op: "close " + key, Err: err}
	}
	return nil
}

// Delete implements Backend.
func (b *GCSBackend) Delete(ctx context.Context, bucket, key string) error {
	err := b.client.Bucket(bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	if err != nil {
		return &BackendError{Backend: backendGCS, Op: "delete " + key, Err: err}
	}
	return nil
}

// Exists implements Backend.
func (b *GCSBackend) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := b.client.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &BackendError{Backend: backendGCS, Op: "attrs " + key, Err: err}
	}
	return true, nil
}

// SignGetURL implements Backend. Signing uses the client's credentials.
func (b *GCSBackend) SignGetURL(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	signed, err := b.client.Bucket(bucket).SignedURL(key, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiry),
		Scheme:  gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", &BackendError{Backend: backendGCS, Op: "sign " + key, Err: err}
	}
	return signed, nil
}
