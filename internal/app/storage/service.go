/*
Package storage persists avatar blobs, one per user id, and computes their
integrity hash by streaming the stored bytes.

Two backends implement BlobStore: a directory on the local filesystem and an
S3-compatible bucket.
*/
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Backend names accepted by NewBlobStore.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// ErrNotFound is returned when the user has no stored avatar.
var ErrNotFound = errors.New("storage: avatar not found")

// IOError wraps a failure of the underlying store.
type IOError struct {
	Op  string
	Key string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ServiceConfig holds the configuration required to build a BlobStore.
type ServiceConfig struct {
	Backend string

	// Dir is the avatar directory of the fs backend.
	Dir string

	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// BlobStore is the avatar store. Readers observe either the previous or the
// new content of a blob, never a partial write.
type BlobStore interface {
	// Put creates or replaces the avatar of id.
	Put(ctx context.Context, id uuid.UUID, data []byte) error

	// Get returns the avatar bytes of id.
	Get(ctx context.Context, id uuid.UUID) ([]byte, error)

	// Delete removes the avatar of id, or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// Hash returns the hex SHA-256 of the stored bytes. It is never cached.
	Hash(ctx context.Context, id uuid.UUID) (string, error)

	// Exists reports whether id has an avatar.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// NewBlobStore is the factory function for BlobStore.
func NewBlobStore(ctx context.Context, cfg ServiceConfig) (BlobStore, error) {
	switch cfg.Backend {
	case BackendFS, "":
		return NewFileStore(cfg.Dir)
	case BackendS3:
		return newS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown avatar storage backend %q", cfg.Backend)
	}
}

// objectKey is the name of id's blob in either backend.
func objectKey(id uuid.UUID) string {
	return id.String() + ".moon"
}
