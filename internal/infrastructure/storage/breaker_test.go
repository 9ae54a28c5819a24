package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "inkrelay-backend/pkg/errors"
)

// flakyStore fails every call until healed.
type flakyStore struct {
	healthy bool
	baseURL string
}

func (s *flakyStore) Exists(ctx context.Context, path string) (bool, error) {
	if !s.healthy {
		return false, errors.New("backend down")
	}
	return false, nil
}

func (s *flakyStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if !s.healthy {
		return errors.New("backend down")
	}
	return nil
}

func (s *flakyStore) PublicURL(path string) string {
	return s.baseURL + "/" + path
}

func TestBreakerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should pass calls through while healthy", func(t *testing.T) {
		store := WithBreaker(&flakyStore{healthy: true, baseURL: "http://x"}, "test-ok", zap.NewNop())

		exists, err := store.Exists(ctx, "p")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, store.Put(ctx, "p", nil, "image/svg+xml"))
		assert.Equal(t, "http://x/p", store.PublicURL("p"))
	})

	t.Run("Should open after sustained failures and fail fast", func(t *testing.T) {
		inner := &flakyStore{healthy: false}
		store := WithBreaker(inner, "test-open", zap.NewNop())

		for i := 0; i < 6; i++ {
			_, err := store.Exists(ctx, "p")
			assert.Error(t, err)
		}

		// By now the breaker is open; failures come back as transient
		// without touching the backend.
		_, err := store.Exists(ctx, "p")
		assert.True(t, appErrors.IsTransient(err))
	})

	t.Run("Should not trip on conflicts", func(t *testing.T) {
		store := WithBreaker(&conflictStore{}, "test-conflict", zap.NewNop())

		for i := 0; i < 10; i++ {
			err := store.Put(ctx, "p", nil, "image/svg+xml")
			assert.True(t, appErrors.IsConflict(err))
		}
	})
}

// conflictStore always reports a write conflict.
type conflictStore struct{}

func (s *conflictStore) Exists(ctx context.Context, path string) (bool, error) { return true, nil }

func (s *conflictStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	return appErrors.NewConflict("object already exists")
}

func (s *conflictStore) PublicURL(path string) string { return "" }
