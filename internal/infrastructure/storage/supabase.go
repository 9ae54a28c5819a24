package storage

import (
	"bytes"
	"context"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	appErrors "inkrelay-backend/pkg/errors"
)

// SupabaseStore persists objects in a Supabase storage bucket. The
// bucket is expected to allow public reads.
type SupabaseStore struct {
	client *supabase.Client
	bucket string
	logger *zap.Logger
}

// NewSupabaseStore creates a store over the given project. The service
// role key is required for writes.
func NewSupabaseStore(projectURL, serviceRoleKey, bucket string, logger *zap.Logger) (*SupabaseStore, error) {
	client, err := supabase.NewClient(projectURL, serviceRoleKey, nil)
	if err != nil {
		return nil, appErrors.NewInternal("failed to create supabase client", err)
	}
	return &SupabaseStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Exists implements ObjectStore by listing the object's directory and
// scanning for its name.
func (s *SupabaseStore) Exists(ctx context.Context, path string) (bool, error) {
	dir, name := splitObjectPath(path)

	files, err := s.client.Storage.ListFiles(s.bucket, dir, storage_go.FileSearchOptions{})
	if err != nil {
		return false, appErrors.NewInternal("failed to list storage objects", err)
	}

	for _, f := range files {
		if f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Put implements ObjectStore. Upsert stays disabled so a write race on
// the same path surfaces as a conflict instead of a silent overwrite.
func (s *SupabaseStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	upsert := false
	cacheControl := "3600"

	_, err := s.client.Storage.UploadFile(s.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		if isDuplicateError(err) {
			return appErrors.NewConflict("object already exists: " + path)
		}
		return appErrors.NewInternal("storage upload failed", err)
	}

	s.logger.Debug("Stored object", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// PublicURL implements ObjectStore.
func (s *SupabaseStore) PublicURL(path string) string {
	return s.client.Storage.GetPublicUrl(s.bucket, path).SignedURL
}

func splitObjectPath(path string) (dir, name string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// isDuplicateError matches the storage API's rejection of a write to
// an existing path with upsert disabled.
func isDuplicateError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "409")
}
