// Package api defines the wire contracts between the submission client
// and the ingestion endpoint. It decouples the API structure from the
// internal domain models.
package api

import (
	"inkrelay-backend/internal/stroke"
)

// CanvasSize describes the capturing surface in drawing units.
type CanvasSize struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// SubmitMeta carries submission metadata.
type SubmitMeta struct {
	CreatedAt       string  `json:"createdAt" validate:"required"`
	Color           string  `json:"color"`
	BaseStrokeWidth float64 `json:"baseStrokeWidth"`
}

// SubmitPayload is the body of a POST to the ingestion endpoint.
// Strokes carry optimized compact points; the server re-derives the
// vector document from them rather than trusting client-side encoding.
type SubmitPayload struct {
	SessionID      string                  `json:"sessionId" validate:"required"`
	ClientID       string                  `json:"clientId" validate:"required"`
	IdempotencyKey string                  `json:"idempotencyKey" validate:"required"`
	Canvas         CanvasSize              `json:"canvas"`
	Strokes        [][]stroke.CompactPoint `json:"strokes" validate:"required,min=1"`
	Meta           SubmitMeta              `json:"meta"`
}

// TotalPoints returns the point count across all payload strokes.
func (p SubmitPayload) TotalPoints() int {
	total := 0
	for _, s := range p.Strokes {
		total += len(s)
	}
	return total
}

// SubmitResponse is the ingestion endpoint's acknowledgment.
type SubmitResponse struct {
	ID             string `json:"id"`
	StoragePathSVG string `json:"storagePathSvg"`
	Broadcasted    bool   `json:"broadcasted"`
}

// ErrorResponse is the body of every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}
