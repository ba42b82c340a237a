// Package memory provides a metadata-only Storage for tests. File bytes
// are discarded; only keys, sizes and URLs are tracked.
package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/castrogabe/antiquepox/internal/storage"
	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
)

type fileEntry struct {
	key         string
	contentType string
	size        int64
	url         string
}

// Storage is an in-memory storage.Storage, safe for concurrent use.
type Storage struct {
	mu      sync.RWMutex
	files   map[string]*fileEntry
	baseURL string
}

// New creates an empty in-memory store serving URLs under baseURL.
func New(baseURL string) *Storage {
	return &Storage{
		files:   make(map[string]*fileEntry),
		baseURL: baseURL,
	}
}

// Upload records the file's metadata and returns its URL. The data reader
// is drained so callers see the same read behavior as with disk storage.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if input.Data != nil {
		if _, err := io.Copy(io.Discard, input.Data); err != nil {
			return nil, fmt.Errorf("read file %s: %w", input.Key, err)
		}
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, input.Key)

	s.mu.Lock()
	s.files[input.Key] = &fileEntry{
		key:         input.Key,
		contentType: input.ContentType,
		size:        input.Size,
		url:         url,
	}
	s.mu.Unlock()

	return &storage.UploadResult{Key: input.Key, URL: url}, nil
}

// Delete forgets the file with the given key.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[key]; !ok {
		return apperrors.NotFound("file", key)
	}
	delete(s.files, key)
	return nil
}

// GetURL looks up the URL recorded for key at upload time.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.files[key]
	if !ok {
		return "", apperrors.NotFound("file", key)
	}
	return entry.url, nil
}
