package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryStorage keeps objects in process memory. URLs use the configured prefix.
type MemoryStorage struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	types     map[string]string
	publicURL string
}

// NewMemoryStorage creates an empty MemoryStorage serving URLs under publicURL.
func NewMemoryStorage(publicURL string) *MemoryStorage {
	return &MemoryStorage{
		objects:   make(map[string][]byte),
		types:     make(map[string]string),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *MemoryStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	s.mu.Lock()
	s.objects[key] = data
	s.types[key] = contentType
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("failed to download object: %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStorage) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

func (s *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	return ok, nil
}

// ContentType returns the content type recorded for key.
func (s *MemoryStorage) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.types[key]
}
