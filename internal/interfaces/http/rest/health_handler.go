package rest

import (
	"net/http"

	"inkrelay-backend/pkg/api"
)

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "healthy"})
}
