package submit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inkrelay-backend/internal/kvstore"
	"inkrelay-backend/internal/stroke"
	"inkrelay-backend/pkg/api"
)

func testPayload(key string) api.SubmitPayload {
	return api.SubmitPayload{
		SessionID:      "session-1",
		ClientID:       "client-1",
		IdempotencyKey: key,
		Canvas:         api.CanvasSize{Width: 800, Height: 600},
		Strokes: [][]stroke.CompactPoint{
			{{X: 0, Y: 0, P: 0.5}, {X: 10, Y: 10, P: 0.5}},
		},
		Meta: api.SubmitMeta{CreatedAt: "2026-08-30T10:00:00Z"},
	}
}

func TestQueue(t *testing.T) {
	newQueue := func() *Queue {
		return NewQueue(kvstore.NewMemoryStore(), zap.NewNop())
	}

	t.Run("Should add and list items", func(t *testing.T) {
		q := newQueue()

		q.Add(testPayload("key-1"))
		q.Add(testPayload("key-2"))

		assert.Equal(t, 2, q.Size())
		assert.Len(t, q.All(), 2)
	})

	t.Run("Should upsert by idempotency key preserving attempts", func(t *testing.T) {
		q := newQueue()

		first := q.Add(testPayload("key-1"))
		require.NoError(t, q.IncrementAttempts(first.ID))
		require.NoError(t, q.IncrementAttempts(first.ID))

		second := q.Add(testPayload("key-1"))

		assert.Equal(t, 1, q.Size())
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 2, second.Attempts)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("Should remove items", func(t *testing.T) {
		q := newQueue()

		item := q.Add(testPayload("key-1"))
		q.Add(testPayload("key-2"))

		require.NoError(t, q.Remove(item.ID))

		assert.Equal(t, 1, q.Size())
	})

	t.Run("Should split pending from abandoned", func(t *testing.T) {
		q := newQueue()

		fresh := q.Add(testPayload("key-fresh"))
		stale := q.Add(testPayload("key-stale"))
		for i := 0; i < DefaultMaxAttempts; i++ {
			require.NoError(t, q.IncrementAttempts(stale.ID))
		}

		pending := q.Pending(DefaultMaxAttempts)
		abandoned := q.Abandoned(DefaultMaxAttempts)

		require.Len(t, pending, 1)
		require.Len(t, abandoned, 1)
		assert.Equal(t, fresh.ID, pending[0].ID)
		assert.Equal(t, stale.ID, abandoned[0].ID)
	})

	t.Run("Should treat a corrupt store as empty", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(queueKey, "{not json"))
		q := NewQueue(store, zap.NewNop())

		assert.Equal(t, 0, q.Size())

		// Adding afterwards replaces the corrupt value.
		q.Add(testPayload("key-1"))
		assert.Equal(t, 1, q.Size())
	})

	t.Run("Should clear the queue", func(t *testing.T) {
		q := newQueue()
		q.Add(testPayload("key-1"))

		require.NoError(t, q.Clear())

		assert.Equal(t, 0, q.Size())
	})

	t.Run("Should stamp attempt times", func(t *testing.T) {
		q := newQueue()
		before := time.Now().UnixMilli()

		item := q.Add(testPayload("key-1"))

		assert.GreaterOrEqual(t, item.LastAttempt, before)
		assert.GreaterOrEqual(t, item.CreatedAt, before)
	})
}

func TestLoadClientContext(t *testing.T) {
	t.Run("Should generate and persist a client id on first use", func(t *testing.T) {
		store := kvstore.NewMemoryStore()

		first, err := LoadClientContext(store, "session-1")
		require.NoError(t, err)
		require.NotEmpty(t, first.ClientID)
		assert.Equal(t, "session-1", first.SessionID)

		second, err := LoadClientContext(store, "session-2")
		require.NoError(t, err)
		assert.Equal(t, first.ClientID, second.ClientID)
	})

	t.Run("Should reset to a fresh id on demand", func(t *testing.T) {
		store := kvstore.NewMemoryStore()

		first, err := LoadClientContext(store, "session-1")
		require.NoError(t, err)

		fresh, err := ResetClientID(store)
		require.NoError(t, err)
		assert.NotEqual(t, first.ClientID, fresh)

		after, err := LoadClientContext(store, "session-1")
		require.NoError(t, err)
		assert.Equal(t, fresh, after.ClientID)
	})
}
