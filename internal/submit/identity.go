// Package submit implements the client side of the handwriting
// pipeline: payload building, idempotent delivery with retry, and the
// offline queue that catches exhausted submissions.
package submit

import (
	"github.com/google/uuid"

	"inkrelay-backend/internal/kvstore"
)

// Stable local-store keys. Bump the suffix if the serialized shape of
// the stored value ever changes incompatibly.
const (
	clientIDKey = "client-id"
	queueKey    = "offline-queue-v1"
)

// ClientContext carries the identity a submission is made under. It is
// constructed explicitly and passed into the client rather than read
// from ambient state.
type ClientContext struct {
	// ClientID is generated once per device profile and is stable
	// across sessions.
	ClientID string
	// SessionID scopes submissions to one exhibition session.
	SessionID string
}

// LoadClientContext resolves the client identity from the local store,
// generating and persisting a fresh id on first use. An unreadable
// store degrades to a fresh id rather than failing.
func LoadClientContext(store kvstore.Store, sessionID string) (ClientContext, error) {
	id, ok, err := store.Get(clientIDKey)
	if err != nil || !ok || id == "" {
		id = uuid.NewString()
		if err := store.Set(clientIDKey, id); err != nil {
			return ClientContext{}, err
		}
	}
	return ClientContext{ClientID: id, SessionID: sessionID}, nil
}

// ResetClientID discards the persisted identity and generates a new
// one. Only for explicit operator resets.
func ResetClientID(store kvstore.Store) (string, error) {
	id := uuid.NewString()
	if err := store.Set(clientIDKey, id); err != nil {
		return "", err
	}
	return id, nil
}
