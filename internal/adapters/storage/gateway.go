package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/logger"
)

// DefaultPublicBaseURL is the public object host used when none is configured.
const DefaultPublicBaseURL = "https://storage.googleapis.com"

// Gateway uploads, deletes and links evidence objects stored under one
// bucket and folder.
type Gateway struct {
	backend    Backend
	bucket     string
	folder     string
	publicBase string
	maxSize    int64
	urlTTL     time.Duration
	log        *logger.Logger
}

// NewGateway creates a gateway over the given backend.
func NewGateway(backend Backend, cfg config.StorageConfig, log *logger.Logger) *Gateway {
	publicBase := cfg.GetStoragePublicBaseURL()
	if publicBase == "" {
		publicBase = DefaultPublicBaseURL
	}
	return &Gateway{
		backend:    backend,
		bucket:     cfg.GetStorageBucket(),
		folder:     strings.Trim(cfg.GetStorageFolder(), "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
		maxSize:    cfg.GetMaxUploadSize(),
		urlTTL:     cfg.GetSignedURLTTL(),
		log:        log,
	}
}

// MaxUploadSize returns the configured maximum object size in bytes.
func (g *Gateway) MaxUploadSize() int64 {
	return g.maxSize
}

// EnsureBucket creates the configured bucket if it doesn't exist.
func (g *Gateway) EnsureBucket(ctx context.Context) error {
	return g.backend.EnsureBucket(ctx, g.bucket)
}

// Upload stores the object and returns its retrievable URL. Failures are
// reported as *UploadError; precondition failures also match ErrEmptyFile,
// ErrMissingName or ErrFileTooLarge with errors.Is.
func (g *Gateway) Upload(ctx context.Context, reader io.Reader, size int64, name string) (string, error) {
	if err := checkUpload(reader, size, name, g.maxSize); err != nil {
		return "", &UploadError{Message: err.Error(), Err: err}
	}

	err := g.backend.Put(ctx, g.bucket, g.key(name), reader, size, ContentTypeFor(name))
	if err != nil {
		var backendErr *BackendError
		message := "upload error: " + err.Error()
		if errors.As(err, &backendErr) {
			message = "storage backend error: " + backendErr.Err.Error()
		}
		g.log.WithContext(ctx).Error("object upload failed", "backend", g.backend.Name(), "object", name, "error", err)
		return "", &UploadError{Message: message, Err: err}
	}

	g.log.WithContext(ctx).Info("object uploaded", "backend", g.backend.Name(), "object", name, "size", size)
	return g.URL(ctx, name, g.urlTTL), nil
}

// Delete removes the object. existed is false when there was nothing to remove.
func (g *Gateway) Delete(ctx context.Context, name string) (bool, error) {
	err := g.backend.Delete(ctx, g.bucket, g.key(name))
	if errors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// URL returns a signed download URL for the object. It returns "" when the
// object is known to be absent and falls back to the public URL when the
// existence check or signing fails. It never returns an error.
func (g *Gateway) URL(ctx context.Context, name string, expiry time.Duration) string {
	if expiry <= 0 {
		expiry = g.urlTTL
	}

	key := g.key(name)
	exists, err := g.backend.Exists(ctx, g.bucket, key)
	if err == nil && !exists {
		return ""
	}
	if err == nil {
		signed, signErr := g.backend.SignGetURL(ctx, g.bucket, key, expiry)
		if signErr == nil {
			return signed
		}
		err = signErr
	}

	g.log.WithContext(ctx).Warn("signed url unavailable, using public url", "object", name, "error", err)
	return g.PublicURL(name)
}

// PublicURL builds the direct object URL {base}/{bucket}/{folder}/{name}.
func (g *Gateway) PublicURL(name string) string {
	return g.publicBase + "/" + g.bucket + "/" + g.key(name)
}

func (g *Gateway) key(name string) string {
	if g.folder == "" {
		return name
	}
	return g.folder + "/" + name
}
