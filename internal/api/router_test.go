package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codergirlprerna/t20-predictor/backend/internal/api/handlers"
	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

type stubService struct{}

func (stubService) Standings(ctx context.Context) (*predictor.StandingsView, error) {
	return &predictor.StandingsView{}, nil
}

func (stubService) GroupChances(ctx context.Context, group qualification.GroupID) (*predictor.GroupChancesView, error) {
	return &predictor.GroupChancesView{Group: group}, nil
}

func (stubService) Refresh(ctx context.Context) (*predictor.RefreshResult, error) {
	return &predictor.RefreshResult{}, nil
}

func (stubService) Predict(ctx context.Context, team1, team2, winner qualification.TeamID) (*predictor.PredictionView, error) {
	if winner == "panic" {
		panic("boom")
	}
	return &predictor.PredictionView{Group: "1"}, nil
}

func newTestRouter(limiter *ClientLimiter) http.Handler {
	log := logger.Nop()
	svc := stubService{}
	return NewRouter(Handlers{
		Standings:  handlers.NewStandingsHandler(svc, log),
		Predict:    handlers.NewPredictHandler(svc, log),
		Health:     handlers.NewHealthHandler(nil, nil),
		CORSOrigin: "*",
		Limiter:    limiter,
	}, log)
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/standings", http.StatusOK},
		{http.MethodGet, "/api/groups/1/chances", http.StatusOK},
		{http.MethodPost, "/api/refresh", http.StatusOK},
		{http.MethodGet, "/api/predict?team1Id=1&team2Id=2&winnerId=1", http.StatusOK},
		{http.MethodGet, "/api/refresh", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
		{http.MethodGet, "/ws", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings", nil))

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/predict?team1Id=1&team2Id=2&winnerId=panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestRouter_PredictRateLimited(t *testing.T) {
	r := newTestRouter(NewClientLimiter(0.001, 2))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/predict?team1Id=1&team2Id=2&winnerId=1", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"), "other clients keep their own bucket")

	// standings are not limited
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/standings", nil)
	req.RemoteAddr = "10.0.0.1:1003"
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientLimiter_Sweep(t *testing.T) {
	l := NewClientLimiter(1, 1)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("a"))
	now = now.Add(visitorTTL / 2)
	require.True(t, l.Allow("b"))

	now = now.Add(visitorTTL/2 + time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "b")
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientKey(req))

	req.Header.Del("X-Forwarded-For")
	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", clientKey(req))
}

func TestRouter_Preflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/refresh", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
