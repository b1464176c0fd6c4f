// Package storage provides the object store backing avatar uploads.
//
// Avatars live in a single MinIO (S3 compatible) bucket. Object names are
// prefixed with the owning user's ID so that listing and cleanup can operate
// on one user's files without touching anyone else's.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/config"
)

// ErrObjectExists is returned when an upload would overwrite an existing
// object. Callers treat this as a conflict rather than replacing the file.
var ErrObjectExists = errors.New("object already exists")

// ErrObjectNotFound is returned when a requested object is missing.
var ErrObjectNotFound = errors.New("object not found")

// AvatarStore wraps a MinIO client scoped to the avatar bucket.
type AvatarStore struct {
	client     *minio.Client
	bucket     string
	endpoint   string
	secure     bool
	publicBase string
}

// NewAvatarStore connects to the object store and verifies the avatar bucket
// exists. Bucket provisioning is an operations concern, so a missing bucket
// fails startup instead of being created on the fly.
func NewAvatarStore(ctx context.Context, cfg *config.StorageSettings) (*AvatarStore, error) {
	endpoint, secure := resolveEndpoint(cfg.Endpoint, cfg.UseSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check avatar bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("avatar bucket %q does not exist", cfg.Bucket)
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", cfg.Bucket).
		Bool("secure", secure).
		Msg("Avatar object store connected")

	return &AvatarStore{
		client:     client,
		bucket:     cfg.Bucket,
		endpoint:   endpoint,
		secure:     secure,
		publicBase: cfg.PublicBaseURL,
	}, nil
}

// Upload stores an object and returns its public URL. Existing objects are
// never overwritten; the check and the put are separate calls, and the
// millisecond timestamp in generated object names keeps that window harmless.
func (s *AvatarStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectName, minio.StatObjectOptions{})
	if err == nil {
		return "", ErrObjectExists
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code != "NoSuchKey" && resp.StatusCode != http.StatusNotFound {
		return "", fmt.Errorf("failed to check object %q before upload: %w", objectName, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %q: %w", objectName, err)
	}

	return s.PublicURL(objectName), nil
}

// Remove deletes a single object. Removing a missing object is not an error.
func (s *AvatarStore) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %q: %w", objectName, err)
	}
	return nil
}

// ListByPrefix returns the names of every object under the prefix.
func (s *AvatarStore) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %q: %w", prefix, object.Err)
		}
		names = append(names, object.Key)
	}
	return names, nil
}

// RemoveByPrefix deletes every object under the prefix and reports how many
// were removed before any failure. Callers decide whether a partial cleanup
// blocks the surrounding operation.
func (s *AvatarStore) RemoveByPrefix(ctx context.Context, prefix string) (int, error) {
	names, err := s.ListByPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if err := s.Remove(ctx, name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// PublicURL builds the address an avatar is served from. A configured public
// base (CDN or reverse proxy) wins; otherwise the URL points at the storage
// endpoint directly.
func (s *AvatarStore) PublicURL(objectName string) string {
	if s.publicBase != "" {
		return strings.TrimRight(s.publicBase, "/") + "/" + s.bucket + "/" + objectName
	}
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectName)
}

// resolveEndpoint strips a scheme from the configured endpoint, since the
// client wants a bare host. A scheme, when present, decides TLS; otherwise
// the use_ssl setting does.
func resolveEndpoint(endpoint string, useSSL bool) (string, bool) {
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Host, u.Scheme == "https"
	}
	return endpoint, useSSL
}
