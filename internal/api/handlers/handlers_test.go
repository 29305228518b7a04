package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codergirlprerna/t20-predictor/backend/internal/feed"
	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/database"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/httputil"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

type fakeService struct {
	standings *predictor.StandingsView
	chances   *predictor.GroupChancesView
	refresh   *predictor.RefreshResult
	predict   *predictor.PredictionView
	err       error

	gotGroup                 qualification.GroupID
	gotTeam1, gotTeam2, gotW qualification.TeamID
}

func (f *fakeService) Standings(ctx context.Context) (*predictor.StandingsView, error) {
	return f.standings, f.err
}

func (f *fakeService) GroupChances(ctx context.Context, group qualification.GroupID) (*predictor.GroupChancesView, error) {
	f.gotGroup = group
	return f.chances, f.err
}

func (f *fakeService) Refresh(ctx context.Context) (*predictor.RefreshResult, error) {
	return f.refresh, f.err
}

func (f *fakeService) Predict(ctx context.Context, team1, team2, winner qualification.TeamID) (*predictor.PredictionView, error) {
	f.gotTeam1, f.gotTeam2, f.gotW = team1, team2, winner
	return f.predict, f.err
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("wrap: %w", qualification.ErrInvalidInput), http.StatusBadRequest},
		{"bounds", fmt.Errorf("wrap: %w", qualification.ErrComputationBounds), http.StatusUnprocessableEntity},
		{"no snapshot", tournament.ErrNoSnapshot, http.StatusNotFound},
		{"unknown group", fmt.Errorf("%w: 9", predictor.ErrGroupNotFound), http.StatusNotFound},
		{"stale snapshot", fmt.Errorf("save snapshot: %w", tournament.ErrStaleSnapshot), http.StatusConflict},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"no feed", feed.ErrNoFeed, http.StatusServiceUnavailable},
		{"bad snapshot", fmt.Errorf("%w: no teams", tournament.ErrInvalidSnapshot), http.StatusBadGateway},
		{"upstream status", fmt.Errorf("fetch: %w", &httputil.StatusError{URL: "http://feed", StatusCode: 500}), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestGetStandings(t *testing.T) {
	svc := &fakeService{standings: &predictor.StandingsView{LastUpdated: 1700000000000}}
	h := NewStandingsHandler(svc, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetStandings(rec, httptest.NewRequest(http.MethodGet, "/api/standings", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, float64(1700000000000), decode(t, rec)["lastUpdated"])
}

func TestGetStandings_NoSnapshot(t *testing.T) {
	h := NewStandingsHandler(&fakeService{err: tournament.ErrNoSnapshot}, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetStandings(rec, httptest.NewRequest(http.MethodGet, "/api/standings", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, tournament.ErrNoSnapshot.Error(), decode(t, rec)["error"])
}

func TestGetStandings_InternalErrorIsGeneric(t *testing.T) {
	h := NewStandingsHandler(&fakeService{err: errors.New("pq: password authentication failed")}, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetStandings(rec, httptest.NewRequest(http.MethodGet, "/api/standings", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to load standings", decode(t, rec)["error"])
}

func TestGetGroupChances(t *testing.T) {
	svc := &fakeService{chances: &predictor.GroupChancesView{Group: "2"}}
	h := NewStandingsHandler(svc, logger.Nop())

	r := mux.NewRouter()
	r.HandleFunc("/api/groups/{group}/chances", h.GetGroupChances)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups/2/chances", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, qualification.GroupID("2"), svc.gotGroup)
	assert.Equal(t, "2", decode(t, rec)["group"])
}

func TestGetGroupChances_Unknown(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w: 9", predictor.ErrGroupNotFound)}
	h := NewStandingsHandler(svc, logger.Nop())

	r := mux.NewRouter()
	r.HandleFunc("/api/groups/{group}/chances", h.GetGroupChances)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups/9/chances", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh(t *testing.T) {
	svc := &fakeService{refresh: &predictor.RefreshResult{Version: 42, Teams: 8, Fixtures: 6, Groups: 2, Duration: 1500 * time.Millisecond}}
	h := NewStandingsHandler(svc, logger.Nop())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(42), body["version"])
	assert.Equal(t, float64(8), body["teams"])
	assert.Equal(t, float64(1500), body["duration_ms"])
}

func TestRefresh_NoFeed(t *testing.T) {
	h := NewStandingsHandler(&fakeService{err: feed.ErrNoFeed}, logger.Nop())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, feed.ErrNoFeed.Error(), decode(t, rec)["error"])
}

func TestPredict(t *testing.T) {
	svc := &fakeService{predict: &predictor.PredictionView{
		Group:         "1",
		Winner:        predictor.ImpactView{TeamID: "3", BeforeChance: 25, AfterChance: 50, Change: 25, Direction: qualification.DirectionUp},
		Loser:         predictor.ImpactView{TeamID: "4", BeforeChance: 50, AfterChance: 0, Change: -50, Direction: qualification.DirectionDown},
		RippleEffects: []predictor.ImpactView{},
	}}
	h := NewPredictHandler(svc, logger.Nop())

	rec := httptest.NewRecorder()
	h.Predict(rec, httptest.NewRequest(http.MethodGet, "/api/predict?team1Id=3&team2Id=4&winnerId=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, qualification.TeamID("3"), svc.gotTeam1)
	assert.Equal(t, qualification.TeamID("4"), svc.gotTeam2)
	assert.Equal(t, qualification.TeamID("3"), svc.gotW)

	body := decode(t, rec)
	winner := body["winner"].(map[string]interface{})
	assert.Equal(t, float64(50), winner["afterChance"])
	assert.Equal(t, "UP", winner["direction"])
	assert.Empty(t, body["rippleEffects"])
}

func TestPredict_MissingParams(t *testing.T) {
	svc := &fakeService{}
	h := NewPredictHandler(svc, logger.Nop())

	for _, q := range []string{"", "?team1Id=1", "?team1Id=1&team2Id=2", "?team1Id=1&team2Id=2&winnerId=%20"} {
		rec := httptest.NewRecorder()
		h.Predict(rec, httptest.NewRequest(http.MethodGet, "/api/predict"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	assert.Empty(t, svc.gotTeam1, "service not called")
}

func TestPredict_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: winner 5 is neither 1 nor 2", qualification.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: 21 fixtures", qualification.ErrComputationBounds), http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		h := NewPredictHandler(&fakeService{err: tt.err}, logger.Nop())
		rec := httptest.NewRecorder()
		h.Predict(rec, httptest.NewRequest(http.MethodGet, "/api/predict?team1Id=1&team2Id=2&winnerId=5", nil))

		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
		assert.NotEmpty(t, decode(t, rec)["error"])
	}
}

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(ctx context.Context) (*database.HealthStatus, error) {
	return &database.HealthStatus{Healthy: f.err == nil}, f.err
}

type fakeCounter int

func (f fakeCounter) Clients() int { return int(f) }

func TestHealth(t *testing.T) {
	t.Run("memory store", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil, fakeCounter(3)).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, float64(3), body["ws_clients"])
		assert.NotContains(t, body, "database")
	})

	t.Run("database up", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(fakeDB{}, nil).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["database"].(map[string]interface{})["healthy"])
	})

	t.Run("database down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(fakeDB{err: errors.New("refused")}, nil).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "degraded", decode(t, rec)["status"])
	})
}
