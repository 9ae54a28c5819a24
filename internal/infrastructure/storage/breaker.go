package storage

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	appErrors "inkrelay-backend/pkg/errors"
)

// BreakerStore decorates an ObjectStore with a circuit breaker so a
// misbehaving storage backend fails fast instead of stalling every
// ingest request. Conflicts count as successes: they are the expected
// outcome of racing idempotent writes, not a backend fault.
type BreakerStore struct {
	inner ObjectStore
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps a store in a circuit breaker.
func WithBreaker(inner ObjectStore, name string, logger *zap.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Storage circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || appErrors.IsConflict(err)
		},
	})

	return &BreakerStore{inner: inner, cb: cb}
}

// Exists implements ObjectStore.
func (s *BreakerStore) Exists(ctx context.Context, path string) (bool, error) {
	result, err := s.cb.Execute(func() (any, error) {
		return s.inner.Exists(ctx, path)
	})
	if err != nil {
		return false, translateBreakerError(err)
	}
	return result.(bool), nil
}

// Put implements ObjectStore.
func (s *BreakerStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.Put(ctx, path, data, contentType)
	})
	return translateBreakerError(err)
}

// PublicURL implements ObjectStore. URL derivation is local and never
// goes through the breaker.
func (s *BreakerStore) PublicURL(path string) string {
	return s.inner.PublicURL(path)
}

func translateBreakerError(err error) error {
	switch err {
	case nil:
		return nil
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return appErrors.NewTransient("storage temporarily unavailable", err)
	default:
		return err
	}
}
