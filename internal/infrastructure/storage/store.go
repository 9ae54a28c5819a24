// Package storage provides the object store the ingestion service
// persists vector documents to.
package storage

import (
	"context"
	"net/http"
	"strings"
	"sync"

	appErrors "inkrelay-backend/pkg/errors"
)

// ObjectStore is the port the ingestion service writes through. Put
// never overwrites: writing to an existing path returns a conflict
// error, which is the authoritative signal for racing idempotent
// requests.
type ObjectStore interface {
	// Exists reports whether an object is already stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Put stores an object. A pre-existing object at path yields a
	// conflict error and leaves the stored object untouched.
	Put(ctx context.Context, path string, data []byte, contentType string) error

	// PublicURL returns the publicly readable URL for path.
	PublicURL(path string) string
}

// MemoryStore is an in-memory ObjectStore for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryStore creates an empty store whose public URLs are rooted
// at baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Exists implements ObjectStore.
func (s *MemoryStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok, nil
}

// Put implements ObjectStore.
func (s *MemoryStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; ok {
		return appErrors.NewConflict("object already exists: " + path)
	}
	s.objects[path] = append([]byte(nil), data...)
	return nil
}

// PublicURL implements ObjectStore.
func (s *MemoryStore) PublicURL(path string) string {
	return s.baseURL + "/" + path
}

// Handler serves stored objects over HTTP so local runs have working
// public URLs.
func (s *MemoryStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		data, ok := s.Get(path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(data)
	})
}

// Get returns a stored object, for tests.
func (s *MemoryStore) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[path]
	return data, ok
}

// Len returns the number of stored objects, for tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
