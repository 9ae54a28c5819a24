package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"inkrelay-backend/internal/infrastructure/realtime"
	"inkrelay-backend/pkg/api"
)

// SubscribeHandler upgrades display clients to a websocket feed of
// newly stored handwriting for one session.
type SubscribeHandler struct {
	hub      *realtime.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewSubscribeHandler creates the websocket subscribe handler.
func NewSubscribeHandler(hub *realtime.Hub, logger *zap.Logger) *SubscribeHandler {
	return &SubscribeHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Display clients run on gallery machines and kiosks with
			// varying origins; the session id scopes what they see.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe handles GET /v1/sessions/{sessionID}/subscribe.
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed",
			zap.String("sessionId", sessionID),
			zap.Error(err),
		)
		return
	}

	h.hub.Subscribe(sessionID, conn)
}
