// Package storage issues signed upload URLs for post images in Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const (
	// UploadPrefix is the object directory post images are written under.
	UploadPrefix = "banana-peel"
	// UploadURLTTL is how long a signed upload URL stays valid.
	UploadURLTTL = 30 * time.Minute
	// MaxUploadBytes caps the signed content-length range.
	MaxUploadBytes = 10 << 20

	publicHost = "https://storage.googleapis.com"
)

var (
	// ErrNotConfigured is returned when no bucket has been set up.
	ErrNotConfigured = errors.New("object storage is not configured")
	// ErrInvalidContentType rejects anything that is not an image.
	ErrInvalidContentType = errors.New("content type must be an image")
	// ErrMissingFileName rejects an empty file name.
	ErrMissingFileName = errors.New("file name is required")
)

// URLSigner signs object URLs. *gcs.BucketHandle satisfies it.
type URLSigner interface {
	SignedURL(object string, opts *gcs.SignedURLOptions) (string, error)
}

// UploadTarget is handed back to the client for a direct PUT.
type UploadTarget struct {
	UploadURL string `json:"upload_url"`
	FilePath  string `json:"file_path"`
	PublicURL string `json:"public_url"`
}

// Uploads issues signed PUT URLs for one bucket.
type Uploads struct {
	bucket string
	signer URLSigner
	client *gcs.Client
	now    func() time.Time
	newID  func() string
}

// NewUploads wraps a signer for the given bucket.
func NewUploads(bucket string, signer URLSigner) *Uploads {
	return &Uploads{
		bucket: bucket,
		signer: signer,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// NewGCSUploads connects to GCS with a service-account key file.
func NewGCSUploads(ctx context.Context, bucket, credentialsFile string) (*Uploads, error) {
	if bucket == "" {
		return nil, ErrNotConfigured
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at path %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	u := NewUploads(bucket, client.Bucket(bucket))
	u.client = client
	return u, nil
}

// Close releases the underlying GCS client, if any.
func (u *Uploads) Close() error {
	if u == nil || u.client == nil {
		return nil
	}
	return u.client.Close()
}

// IssueUploadURL returns a V4 signed PUT URL for a fresh object under UploadPrefix.
func (u *Uploads) IssueUploadURL(fileName, contentType string) (*UploadTarget, error) {
	if u == nil || u.signer == nil {
		return nil, ErrNotConfigured
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, ErrMissingFileName
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidContentType
	}

	objectPath := UploadPrefix + "/" + u.objectName(fileName)
	signed, err := u.signer.SignedURL(objectPath, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      "PUT",
		ContentType: contentType,
		Expires:     u.now().Add(UploadURLTTL),
		QueryParameters: url.Values{
			"x-goog-content-length-range": {fmt.Sprintf("0,%d", MaxUploadBytes)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign upload url: %w", err)
	}

	return &UploadTarget{
		UploadURL: signed,
		FilePath:  objectPath,
		PublicURL: u.PublicURL(objectPath),
	}, nil
}

// PublicURL maps an object path to its public address. Full URLs pass through.
func (u *Uploads) PublicURL(objectPath string) string {
	if strings.HasPrefix(objectPath, "http://") || strings.HasPrefix(objectPath, "https://") {
		return objectPath
	}
	return publicHost + "/" + u.bucket + "/" + strings.TrimLeft(objectPath, "/")
}

func (u *Uploads) objectName(fileName string) string {
	name := fmt.Sprintf("%d-%s", u.now().UnixMilli(), u.newID())
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	if ext == "" || ext == "." {
		return name
	}
	return name + ext
}
