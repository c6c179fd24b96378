/*
Package storage persists avatar blobs.

This file implements the filesystem BlobStore. Each avatar is one file named
after the user id; writes go through a temp file and rename so readers only
ever see a complete blob.
*/
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moonhub/internal/pkg/logx"
)

// FileStore keeps each avatar as <dir>/<uuid>.moon.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates dir if needed and returns a store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("avatar directory is required for the fs backend")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &IOError{Op: "mkdir", Key: dir, Err: err}
	}

	return &FileStore{
		dir:    dir,
		logger: logx.Component("FileStore"),
	}, nil
}

func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, objectKey(id))
}

// Put writes to a temp file in the same directory and renames it over the
// blob, so concurrent readers see whole files only.
func (s *FileStore) Put(_ context.Context, id uuid.UUID, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+id.String()+"-*.tmp")
	if err != nil {
		return s.fail("put", id, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return s.fail("put", id, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return s.fail("put", id, err)
	}

	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return s.fail("put", id, err)
	}

	return nil
}

// Get returns the avatar bytes.
func (s *FileStore) Get(_ context.Context, id uuid.UUID) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, s.fail("get", id, err)
	}
	return data, nil
}

// Delete removes the avatar file.
func (s *FileStore) Delete(_ context.Context, id uuid.UUID) error {
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return s.fail("delete", id, err)
	}
	return nil
}

// Hash streams the file through SHA-256.
func (s *FileStore) Hash(_ context.Context, id uuid.UUID) (string, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", s.fail("hash", id, err)
	}
	defer f.Close()

	return hashReader(f, func(err error) error { return s.fail("hash", id, err) })
}

// Exists reports whether the avatar file is present.
func (s *FileStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, err := os.Stat(s.path(id))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, s.fail("stat", id, err)
	}
}

func (s *FileStore) fail(op string, id uuid.UUID, err error) error {
	s.logger.Error().Err(err).Str("op", op).Str("user_id", id.String()).Msg("Avatar storage operation failed")
	return &IOError{Op: op, Key: objectKey(id), Err: err}
}

// hashReader returns the hex SHA-256 of r; wrap converts read failures.
func hashReader(r io.Reader, wrap func(error) error) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", wrap(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
