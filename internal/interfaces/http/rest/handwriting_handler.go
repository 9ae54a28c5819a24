// Package rest exposes the ingestion pipeline over HTTP.
package rest

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"inkrelay-backend/internal/ingest"
	"inkrelay-backend/pkg/api"
	appErrors "inkrelay-backend/pkg/errors"
)

// HandwritingHandler accepts handwriting submissions.
type HandwritingHandler struct {
	service *ingest.Service
	logger  *zap.Logger
}

// NewHandwritingHandler creates the submission handler.
func NewHandwritingHandler(service *ingest.Service, logger *zap.Logger) *HandwritingHandler {
	return &HandwritingHandler{service: service, logger: logger}
}

// Submit handles POST /v1/handwriting.
func (h *HandwritingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload api.SubmitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Ingest(r.Context(), payload)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	api.Success(w, http.StatusCreated, resp)
}

func (h *HandwritingHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, err.Error())
	case appErrors.IsPermanent(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsTransient(err):
		h.logger.Warn("Submission failed on a transient error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		api.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		h.logger.Error("Submission failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		api.Error(w, http.StatusInternalServerError, "an internal error occurred")
	}
}
