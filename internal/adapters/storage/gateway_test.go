package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"sales_visits_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	objects     map[string][]byte
	types       map[string]string
	putErr      error
	existsErr   error
	signErr     error
	putCalls    int
	lastPutKey  string
	lastPutType string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) EnsureBucket(context.Context, string) error { return nil }

func (f *fakeBackend) Put(_ context.Context, _, key string, r io.Reader, _ int64, contentType string) error {
	f.putCalls++
	f.lastPutKey = key
	f.lastPutType = contentType
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, _, key string) error {
	if _, ok := f.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBackend) Exists(_ context.Context, _, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeBackend) SignGetURL(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://signed.example/" + bucket + "/" + key + "?ttl=" + expiry.String(), nil
}

type storageConfig struct{ publicBase string }

func (storageConfig) GetMaxUploadSize() int64           { return 10 * 1024 * 1024 }
func (storageConfig) GetMinIOEndpoint() string          { return "" }
func (storageConfig) GetMinIOAccessKey() string         { return "" }
func (storageConfig) GetMinIOSecretKey() string         { return "" }
func (storageConfig) GetMinIOUseSSL() bool              { return false }
func (storageConfig) GetGCPProjectID() string           { return "" }
func (storageConfig) GetGoogleCredentialsFile() string  { return "" }
func (storageConfig) GetStorageBackend() string         { return "fake" }
func (storageConfig) GetStorageBucket() string          { return "evidence" }
func (storageConfig) GetStorageFolder() string          { return "/scheduled-visits/" }
func (c storageConfig) GetStoragePublicBaseURL() string { return c.publicBase }
func (storageConfig) GetSignedURLTTL() time.Duration    { return time.Hour }
func (storageConfig) IsStorageEnabled() bool            { return true }

func newGateway(backend Backend) *Gateway {
	return NewGateway(backend, storageConfig{}, logger.Nop())
}

func TestContentTypeTable(t *testing.T) {
	cases := map[string]string{
		"a.pdf":    "application/pdf",
		"a.JPG":    "image/jpeg",
		"a.jpeg":   "image/jpeg",
		"a.docx":   "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"a.xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"a.txt":    "text/plain",
		"a.png":    "application/octet-stream",
		"no-ext":   "application/octet-stream",
		"a.tar.gz": "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentTypeFor(name), name)
	}
}

func TestUploadStoresUnderFolderAndReturnsSignedURL(t *testing.T) {
	backend := newFakeBackend()
	gw := newGateway(backend)

	url, err := gw.Upload(context.Background(), strings.NewReader("evidence"), 8, "photo.jpg")
	require.NoError(t, err)

	assert.Equal(t, "scheduled-visits/photo.jpg", backend.lastPutKey)
	assert.Equal(t, "image/jpeg", backend.lastPutType)
	assert.Equal(t, "https://signed.example/evidence/scheduled-visits/photo.jpg?ttl=1h0m0s", url)
}

func TestUploadPreconditionsSkipBackend(t *testing.T) {
	backend := newFakeBackend()
	gw := newGateway(backend)
	ctx := context.Background()

	_, err := gw.Upload(ctx, nil, 10, "a.pdf")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = gw.Upload(ctx, strings.NewReader(""), 0, "a.pdf")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = gw.Upload(ctx, strings.NewReader("x"), 1, "  ")
	assert.ErrorIs(t, err, ErrMissingName)

	big := int64(11 * 1024 * 1024)
	_, err = gw.Upload(ctx, bytes.NewReader(make([]byte, 1)), big, "big.pdf")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Zero(t, backend.putCalls)
}

func TestUploadClassifiesBackendErrors(t *testing.T) {
	backend := newFakeBackend()
	gw := newGateway(backend)
	ctx := context.Background()

	backend.putErr = &BackendError{Backend: "fake", Op: "put", Err: errors.New("503 slow down")}
	_, err := gw.Upload(ctx, strings.NewReader("x"), 1, "a.pdf")
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "storage backend error: 503 slow down", uploadErr.Message)

	backend.putErr = errors.New("reader closed")
	_, err = gw.Upload(ctx, strings.NewReader("x"), 1, "a.pdf")
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "upload error: reader closed", uploadErr.Message)
}

func TestDeleteDistinguishesMissingObjects(t *testing.T) {
	backend := newFakeBackend()
	gw := newGateway(backend)
	ctx := context.Background()

	_, err := gw.Upload(ctx, strings.NewReader("x"), 1, "a.txt")
	require.NoError(t, err)

	existed, err := gw.Delete(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = gw.Delete(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestURLFallbacks(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["scheduled-visits/a.pdf"] = []byte("x")
	gw := newGateway(backend)
	ctx := context.Background()

	assert.Equal(t, "", gw.URL(ctx, "missing.pdf", time.Minute))

	backend.signErr = errors.New("no signer")
	assert.Equal(t, "https://storage.googleapis.com/evidence/scheduled-visits/a.pdf", gw.URL(ctx, "a.pdf", time.Minute))

	backend.signErr = nil
	backend.existsErr = errors.New("timeout")
	assert.Equal(t, "https://storage.googleapis.com/evidence/scheduled-visits/a.pdf", gw.URL(ctx, "a.pdf", time.Minute))
}

func TestPublicURLUsesConfiguredBase(t *testing.T) {
	gw := NewGateway(newFakeBackend(), storageConfig{publicBase: "http://minio:9000/"}, logger.Nop())
	assert.Equal(t, "http://minio:9000/evidence/scheduled-visits/x.pdf", gw.PublicURL("x.pdf"))
}
