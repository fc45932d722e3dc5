package storage

import (
	"errors"
	"testing"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSigner struct {
	object string
	opts   *gcs.SignedURLOptions
	err    error
}

func (s *recordingSigner) SignedURL(object string, opts *gcs.SignedURLOptions) (string, error) {
	s.object = object
	s.opts = opts
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.example/" + object, nil
}

func newTestUploads(signer URLSigner) *Uploads {
	u := NewUploads("reve-bucket", signer)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u.newID = func() string { return "abc" }
	return u
}

func TestUploads_IssueUploadURL(t *testing.T) {
	signer := &recordingSigner{}
	u := newTestUploads(signer)

	target, err := u.IssueUploadURL("Holiday.PNG", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "banana-peel/1700000000000-abc.png", target.FilePath)
	assert.Equal(t, "https://signed.example/banana-peel/1700000000000-abc.png", target.UploadURL)
	assert.Equal(t, "https://storage.googleapis.com/reve-bucket/banana-peel/1700000000000-abc.png", target.PublicURL)

	require.NotNil(t, signer.opts)
	assert.Equal(t, gcs.SigningSchemeV4, signer.opts.Scheme)
	assert.Equal(t, "PUT", signer.opts.Method)
	assert.Equal(t, "image/png", signer.opts.ContentType)
	assert.Equal(t, time.UnixMilli(1700000000000).Add(30*time.Minute), signer.opts.Expires)
	assert.Equal(t, "0,10485760", signer.opts.QueryParameters.Get("x-goog-content-length-range"))
}

func TestUploads_Validation(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        error
	}{
		{"pdf rejected", "doc.pdf", "application/pdf", ErrInvalidContentType},
		{"empty content type", "a.png", "", ErrInvalidContentType},
		{"empty file name", "  ", "image/png", ErrMissingFileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &recordingSigner{}
			_, err := newTestUploads(signer).IssueUploadURL(tt.fileName, tt.contentType)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, signer.object, "nothing should be signed")
		})
	}
}

func TestUploads_NotConfigured(t *testing.T) {
	var u *Uploads
	_, err := u.IssueUploadURL("a.png", "image/png")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, u.Close())
}

func TestUploads_SignerFailure(t *testing.T) {
	_, err := newTestUploads(&recordingSigner{err: errors.New("no private key")}).IssueUploadURL("a.jpg", "image/jpeg")
	assert.ErrorContains(t, err, "no private key")
}

func TestUploads_ObjectNameWithoutExtension(t *testing.T) {
	target, err := newTestUploads(&recordingSigner{}).IssueUploadURL("snapshot", "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "banana-peel/1700000000000-abc", target.FilePath)
}

func TestUploads_PublicURLPassesThroughFullURLs(t *testing.T) {
	u := newTestUploads(&recordingSigner{})
	assert.Equal(t, "https://cdn.example/x.png", u.PublicURL("https://cdn.example/x.png"))
}
