// Package storage keeps uploaded media (post images and thumbnails) on the
// local filesystem or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"yatube/internal/config"
)

// ErrNotFound is returned by Open for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// Object is one file to store. Path is slash separated and relative,
// e.g. "posts/small.gif".
type Object struct {
	Path        string
	ContentType string
	Data        []byte
}

// Storage is a flat namespace of media objects addressed by relative path.
type Storage interface {
	Save(ctx context.Context, path, contentType string, data []byte) error
	SaveAll(ctx context.Context, objects []Object) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// New builds the backend selected by STORAGE_BACKEND.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return NewLocal(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3(S3Config{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PublicURL:  cfg.S3PublicURL,
			DisableSSL: cfg.S3DisableSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// CleanPath normalizes an object path and rejects absolute paths and any
// path escaping the storage root.
func CleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("storage: invalid path %q", p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("storage: invalid path %q", p)
	}
	return cleaned, nil
}
