package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// Service is what the handlers need from predictor.Service
type Service interface {
	Standings(ctx context.Context) (*predictor.StandingsView, error)
	GroupChances(ctx context.Context, group qualification.GroupID) (*predictor.GroupChancesView, error)
	Refresh(ctx context.Context) (*predictor.RefreshResult, error)
	Predict(ctx context.Context, team1, team2, winner qualification.TeamID) (*predictor.PredictionView, error)
}

// StandingsHandler serves the dashboard endpoints
type StandingsHandler struct {
	service Service
	logger  *logger.Logger
}

// NewStandingsHandler creates a new standings handler
func NewStandingsHandler(service Service, log *logger.Logger) *StandingsHandler {
	return &StandingsHandler{
		service: service,
		logger:  log,
	}
}

// GetStandings returns points table and chances
// GET /api/standings
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Standings(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to load standings")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetGroupChances returns one group's baseline
// GET /api/groups/{group}/chances
func (h *StandingsHandler) GetGroupChances(w http.ResponseWriter, r *http.Request) {
	group := qualification.GroupID(mux.Vars(r)["group"])
	if group == "" {
		respondError(w, http.StatusBadRequest, "group is required")
		return
	}

	view, err := h.service.GroupChances(r.Context(), group)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to load group chances")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Refresh triggers a feed sync
// POST /api/refresh
func (h *StandingsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Refresh(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to refresh standings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":     res.Version,
		"teams":       res.Teams,
		"fixtures":    res.Fixtures,
		"groups":      res.Groups,
		"duration_ms": res.Duration.Milliseconds(),
	})
}
