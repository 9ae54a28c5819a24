package submit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inkrelay-backend/internal/kvstore"
	"inkrelay-backend/pkg/api"
)

// DefaultMaxAttempts is the attempt ceiling after which a queued item
// is considered abandoned and left for an operator.
const DefaultMaxAttempts = 5

// QueueItem is one submission parked in the offline queue after
// delivery failed.
type QueueItem struct {
	ID          string            `json:"id"`
	Payload     api.SubmitPayload `json:"payload"`
	Attempts    int               `json:"attempts"`
	LastAttempt int64             `json:"lastAttempt"`
	CreatedAt   int64             `json:"createdAt"`
}

// Queue is the durable offline queue. Items are stored as one
// serialized array under a stable key; a corrupt or unreadable store
// degrades to an empty queue rather than erroring.
type Queue struct {
	store  kvstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewQueue creates a queue over the given local store.
func NewQueue(store kvstore.Store, logger *zap.Logger) *Queue {
	return &Queue{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (q *Queue) load() []QueueItem {
	raw, ok, err := q.store.Get(queueKey)
	if err != nil {
		q.logger.Warn("Offline queue unreadable, treating as empty", zap.Error(err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var items []QueueItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		q.logger.Warn("Offline queue corrupt, treating as empty", zap.Error(err))
		return nil
	}
	return items
}

func (q *Queue) save(items []QueueItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return q.store.Set(queueKey, string(raw))
}

// Add upserts a payload by idempotency key. An existing entry keeps
// its id, attempt counter and creation time; only the payload and the
// last-attempt stamp refresh.
func (q *Queue) Add(payload api.SubmitPayload) QueueItem {
	items := q.load()
	nowMillis := q.now().UnixMilli()

	item := QueueItem{
		ID:          uuid.NewString(),
		Payload:     payload,
		Attempts:    0,
		LastAttempt: nowMillis,
		CreatedAt:   nowMillis,
	}

	replaced := false
	for i, existing := range items {
		if existing.Payload.IdempotencyKey == payload.IdempotencyKey {
			item.ID = existing.ID
			item.Attempts = existing.Attempts
			item.CreatedAt = existing.CreatedAt
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}

	if err := q.save(items); err != nil {
		q.logger.Error("Failed to persist offline queue", zap.Error(err))
	}
	return item
}

// Remove deletes an item after successful delivery or operator action.
func (q *Queue) Remove(id string) error {
	items := q.load()
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return q.save(kept)
}

// IncrementAttempts bumps an item's attempt counter and last-attempt
// stamp after a failed resend.
func (q *Queue) IncrementAttempts(id string) error {
	items := q.load()
	for i := range items {
		if items[i].ID == id {
			items[i].Attempts++
			items[i].LastAttempt = q.now().UnixMilli()
			return q.save(items)
		}
	}
	return nil
}

// Pending returns items still below the attempt ceiling.
func (q *Queue) Pending(maxAttempts int) []QueueItem {
	var pending []QueueItem
	for _, item := range q.load() {
		if item.Attempts < maxAttempts {
			pending = append(pending, item)
		}
	}
	return pending
}

// Abandoned returns items at or above the attempt ceiling. They are
// never retried automatically and must be surfaced to an operator.
func (q *Queue) Abandoned(maxAttempts int) []QueueItem {
	var abandoned []QueueItem
	for _, item := range q.load() {
		if item.Attempts >= maxAttempts {
			abandoned = append(abandoned, item)
		}
	}
	return abandoned
}

// All returns every queued item.
func (q *Queue) All() []QueueItem {
	return q.load()
}

// Size returns the number of queued items.
func (q *Queue) Size() int {
	return len(q.load())
}

// Clear drops the whole queue.
func (q *Queue) Clear() error {
	return q.store.Delete(queueKey)
}
