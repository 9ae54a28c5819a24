// Package ingest implements the server side of the handwriting
// pipeline: it validates submitted payloads, re-derives the vector
// document, persists it and notifies subscribers.
package ingest

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"inkrelay-backend/internal/infrastructure/realtime"
	"inkrelay-backend/internal/infrastructure/storage"
	"inkrelay-backend/internal/observability"
	"inkrelay-backend/internal/svg"
	"inkrelay-backend/pkg/api"
	appErrors "inkrelay-backend/pkg/errors"
)

// Service handles one submission at a time; requests are independent
// and stateless apart from the idempotency check against the object
// store.
type Service struct {
	store       storage.ObjectStore
	broadcaster realtime.Broadcaster
	validate    *validator.Validate
	logger      *zap.Logger
	metrics     *observability.Collector

	// renderOptions is read per request so tuning reloads take effect
	// without a restart.
	renderOptions func() svg.Options
}

// NewService creates an ingestion service. renderOptions may be nil,
// in which case the default rendering settings apply.
func NewService(
	store storage.ObjectStore,
	broadcaster realtime.Broadcaster,
	metrics *observability.Collector,
	logger *zap.Logger,
	renderOptions func() svg.Options,
) *Service {
	if renderOptions == nil {
		renderOptions = svg.DefaultOptions
	}
	return &Service{
		store:         store,
		broadcaster:   broadcaster,
		validate:      validator.New(),
		logger:        logger,
		metrics:       metrics,
		renderOptions: renderOptions,
	}
}

// StoragePath derives the deterministic object path for a submission.
func StoragePath(sessionID, idempotencyKey string) string {
	return sessionID + "/" + idempotencyKey + ".svg"
}

// Ingest processes one submission: validate, dedupe, encode, store,
// broadcast. A prior identical submission returns the existing
// object's reference without re-encoding. Broadcast failure never
// fails the request; the stored artifact is the source of truth.
func (s *Service) Ingest(ctx context.Context, payload api.SubmitPayload) (api.SubmitResponse, error) {
	if err := s.validatePayload(payload); err != nil {
		return api.SubmitResponse{}, err
	}

	path := StoragePath(payload.SessionID, payload.IdempotencyKey)

	exists, err := s.store.Exists(ctx, path)
	if err != nil {
		return api.SubmitResponse{}, appErrors.Wrap(err, "idempotency check failed")
	}
	if exists {
		s.logger.Info("Idempotent request, returning existing object",
			zap.String("path", path),
			zap.String("clientId", payload.ClientID),
		)
		s.metrics.IdempotentHits.Inc()
		return api.SubmitResponse{
			ID:             payload.IdempotencyKey,
			StoragePathSVG: s.store.PublicURL(path),
			Broadcasted:    false,
		}, nil
	}

	document := svg.EncodeCompact(
		payload.Strokes,
		payload.Canvas.Width,
		payload.Canvas.Height,
		payload.Meta.Color,
		payload.Meta.BaseStrokeWidth,
		s.renderOptions(),
	)

	if err := s.store.Put(ctx, path, []byte(document), "image/svg+xml"); err != nil {
		if appErrors.IsConflict(err) {
			// A concurrent request with the same key won the write
			// race. Benign: return the winner's object.
			s.logger.Info("Write race on idempotency path, returning winner's object",
				zap.String("path", path),
			)
			s.metrics.StorageConflicts.Inc()
			return api.SubmitResponse{
				ID:             payload.IdempotencyKey,
				StoragePathSVG: s.store.PublicURL(path),
				Broadcasted:    false,
			}, nil
		}
		return api.SubmitResponse{}, appErrors.Wrap(err, "failed to store document")
	}

	publicURL := s.store.PublicURL(path)
	s.metrics.SubmissionsIngested.Inc()

	broadcasted := s.broadcast(ctx, payload, publicURL)

	s.logger.Info("Submission ingested",
		zap.String("path", path),
		zap.String("sessionId", payload.SessionID),
		zap.Int("strokes", len(payload.Strokes)),
		zap.Int("points", payload.TotalPoints()),
		zap.Bool("broadcasted", broadcasted),
	)

	return api.SubmitResponse{
		ID:             payload.IdempotencyKey,
		StoragePathSVG: publicURL,
		Broadcasted:    broadcasted,
	}, nil
}

func (s *Service) validatePayload(payload api.SubmitPayload) error {
	if err := s.validate.Struct(payload); err != nil {
		return appErrors.NewValidation("missing required fields: sessionId, clientId, idempotencyKey and at least one stroke are required")
	}
	if payload.TotalPoints() == 0 {
		return appErrors.NewValidation("no stroke points provided")
	}
	return nil
}

// broadcast is best-effort: failures are logged and downgrade the
// response flag, nothing more.
func (s *Service) broadcast(ctx context.Context, payload api.SubmitPayload, publicURL string) bool {
	event := realtime.HandwritingEvent{
		ID:             payload.IdempotencyKey,
		StoragePathSVG: publicURL,
		CreatedAt:      payload.Meta.CreatedAt,
		ClientID:       payload.ClientID,
	}

	if err := s.broadcaster.Publish(ctx, payload.SessionID, event); err != nil {
		s.logger.Warn("Broadcast failed, submission still stored",
			zap.String("sessionId", payload.SessionID),
			zap.Error(err),
		)
		s.metrics.BroadcastFailures.Inc()
		return false
	}
	return true
}
