package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"

	"github.com/castrogabe/antiquepox/internal/storage"
)

// Storage implements storage.Storage on the local filesystem. Files land
// under dir and are served by the HTTP layer from baseURL.
type Storage struct {
	dir     string
	baseURL string
}

// New creates a local storage rooted at dir. The directory is created if
// it does not exist.
func New(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	return &Storage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the file to disk and returns its public URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	key, err := s.safeKey(input.Key)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, key)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Data); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write file %s: %w", key, err)
	}

	return &storage.UploadResult{
		Key: key,
		URL: s.baseURL + "/" + key,
	}, nil
}

// Delete removes the file from disk.
func (s *Storage) Delete(_ context.Context, key string) error {
	safe, err := s.safeKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, safe)); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NotFound("file", key)
		}
		return fmt.Errorf("delete file %s: %w", key, err)
	}

	return nil
}

// GetURL returns the public URL for the given key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	safe, err := s.safeKey(key)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(filepath.Join(s.dir, safe)); err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NotFound("file", key)
		}
		return "", fmt.Errorf("stat file %s: %w", key, err)
	}

	return s.baseURL + "/" + safe, nil
}

// safeKey rejects keys that would escape the upload directory.
func (s *Storage) safeKey(key string) (string, error) {
	clean := filepath.Base(filepath.Clean(key))
	if clean == "." || clean == ".." || clean == "" || clean != key {
		return "", apperrors.InvalidInput("invalid file key")
	}
	return clean, nil
}
