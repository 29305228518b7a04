package handlers

import (
	"net/http"
	"strings"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// PredictHandler serves what-if requests
type PredictHandler struct {
	service Service
	logger  *logger.Logger
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(service Service, log *logger.Logger) *PredictHandler {
	return &PredictHandler{
		service: service,
		logger:  log,
	}
}

// Predict returns how a forced result moves every chance in the group
// GET /api/predict?team1Id=1&team2Id=2&winnerId=2
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	team1 := qualification.TeamID(strings.TrimSpace(q.Get("team1Id")))
	team2 := qualification.TeamID(strings.TrimSpace(q.Get("team2Id")))
	winner := qualification.TeamID(strings.TrimSpace(q.Get("winnerId")))

	if team1 == "" || team2 == "" || winner == "" {
		respondError(w, http.StatusBadRequest, "team1Id, team2Id and winnerId are required")
		return
	}

	view, err := h.service.Predict(r.Context(), team1, team2, winner)
	if err != nil {
		respondServiceError(w, h.logger.WithFields(map[string]interface{}{
			"team1":  team1,
			"team2":  team2,
			"winner": winner,
		}), err, "Failed to compute prediction")
		return
	}

	respondJSON(w, http.StatusOK, view)
}
