package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/blendi-remade/reve-studio/internal/storage"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSigner struct{}

func (staticSigner) SignedURL(object string, _ *gcs.SignedURLOptions) (string, error) {
	return "https://signed.example/" + object, nil
}

func TestCreateUploadURL_StorageDisabled(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/storage/upload-url", tokenFor(t, 2, ""),
		map[string]string{"file_name": "a.png", "content_type": "image/png"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCreateUploadURL(t *testing.T) {
	env := newTestEnv(t, withUploads(storage.NewUploads("reve-bucket", staticSigner{})))
	token := tokenFor(t, 2, "")

	resp, body := env.do(t, http.MethodPost, "/api/storage/upload-url", token,
		map[string]string{"file_name": "beach.JPG", "content_type": "image/jpeg"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	target := decode[storage.UploadTarget](t, body)
	assert.True(t, strings.HasPrefix(target.FilePath, "banana-peel/"))
	assert.True(t, strings.HasSuffix(target.FilePath, ".jpg"))
	assert.Equal(t, "https://signed.example/"+target.FilePath, target.UploadURL)
	assert.Equal(t, "https://storage.googleapis.com/reve-bucket/"+target.FilePath, target.PublicURL)

	resp, _ = env.do(t, http.MethodPost, "/api/storage/upload-url", token,
		map[string]string{"file_name": "notes.txt", "content_type": "text/plain"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/storage/upload-url", token,
		map[string]string{"content_type": "image/png"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/storage/upload-url", "",
		map[string]string{"file_name": "a.png", "content_type": "image/png"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
