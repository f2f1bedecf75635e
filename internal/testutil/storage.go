package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"yatube/internal/storage"
)

// MemoryStorage is an in-memory storage.Storage for tests.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryStorage creates an empty store whose URLs start with baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte), baseURL: baseURL}
}

func (s *MemoryStorage) Save(_ context.Context, p, _ string, data []byte) error {
	p, err := storage.CleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[p] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) SaveAll(ctx context.Context, objects []storage.Object) error {
	for _, o := range objects {
		if err := s.Save(ctx, o.Path, o.ContentType, o.Data); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStorage) Open(_ context.Context, p string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[p]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStorage) Exists(_ context.Context, p string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[p]
	return ok, nil
}

func (s *MemoryStorage) Delete(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, p)
	return nil
}

func (s *MemoryStorage) URL(p string) string {
	return s.baseURL + p
}

// Paths lists the stored object paths.
func (s *MemoryStorage) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for p := range s.objects {
		out = append(out, p)
	}
	return out
}
