package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/database"
)

// DatabaseChecker is satisfied by *database.DB
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// ClientCounter is satisfied by *realtime.Hub
type ClientCounter interface {
	Clients() int
}

// HealthHandler reports liveness and dependency health
type HealthHandler struct {
	db      DatabaseChecker // nil when running on the in-memory store
	clients ClientCounter
	service string
}

// NewHealthHandler creates a new health handler; db and clients may be nil
func NewHealthHandler(db DatabaseChecker, clients ClientCounter) *HealthHandler {
	return &HealthHandler{
		db:      db,
		clients: clients,
		service: "t20-predictor-api",
	}
}

// Check returns server health status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": h.service,
	}
	status := http.StatusOK

	if h.clients != nil {
		body["ws_clients"] = h.clients.Clients()
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus, err := h.db.HealthCheck(ctx)
		body["database"] = dbStatus
		if err != nil {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, body)
}
