package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codergirlprerna/t20-predictor/backend/internal/feed"
	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/httputil"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// StatusFor maps a service error to its HTTP status
// ⭐ SSOT: error -> status mapping lives here only
func StatusFor(err error) int {
	var se *httputil.StatusError
	switch {
	case errors.Is(err, qualification.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, qualification.ErrComputationBounds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tournament.ErrNoSnapshot), errors.Is(err, predictor.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, tournament.ErrStaleSnapshot):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, feed.ErrNoFeed):
		return http.StatusServiceUnavailable
	case errors.Is(err, tournament.ErrInvalidSnapshot), errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status; 5xx details stay in the log
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error, msg string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("status", status).Error(msg)
	}

	switch status {
	case http.StatusInternalServerError:
		respondError(w, status, msg)
	case http.StatusServiceUnavailable:
		if errors.Is(err, context.DeadlineExceeded) {
			respondError(w, status, "computation timed out, try again")
			return
		}
		respondError(w, status, err.Error())
	default:
		respondError(w, status, err.Error())
	}
}
