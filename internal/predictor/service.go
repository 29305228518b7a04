// Package predictor ties the feed, the store and the simulator together.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codergirlprerna/t20-predictor/backend/internal/feed"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/redis"
)

// ErrGroupNotFound is returned for a group absent from the standings
var ErrGroupNotFound = errors.New("group not found")

// EventStandings is broadcast after every successful refresh
const EventStandings = "standings"

// Notifier receives live events
type Notifier interface {
	Broadcast(eventType string, payload interface{})
}

// Service answers every standings and prediction request
// ⭐ SSOT: request-level orchestration lives here; the maths stays in qualification
type Service struct {
	store    tournament.Store
	source   feed.Source
	sim      *qualification.Simulator
	cache    *redis.Cache
	memo     *ImpactMemo
	notifier Notifier
	logger   *logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewService creates the service. source may be nil when no feed is configured.
func NewService(store tournament.Store, source feed.Source, sim *qualification.Simulator, cache *redis.Cache, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		source:  source,
		sim:     sim,
		cache:   cache,
		memo:    NewImpactMemo(redis.TTLLong, log.WithComponent("memo")),
		logger:  log.WithComponent("predictor"),
		timeout: 5 * time.Second,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithNotifier sets where refresh events go
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// WithTimeout bounds each simulation
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// RefreshResult summarises one sync
type RefreshResult struct {
	Version  int64         `json:"version"`
	Teams    int           `json:"teams"`
	Fixtures int           `json:"fixtures"`
	Groups   int           `json:"groups"`
	Duration time.Duration `json:"duration"`
}

// Refresh pulls the feed, stores it, recomputes every group's baseline and
// notifies listeners.
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	if s.source == nil {
		return nil, feed.ErrNoFeed
	}
	start := time.Now()

	snap, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch standings: %w", err)
	}

	return s.Apply(ctx, snap, start)
}

// Apply stores an already fetched snapshot and recomputes chances
func (s *Service) Apply(ctx context.Context, snap *tournament.Snapshot, start time.Time) (*RefreshResult, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	simCtx, cancel := context.WithTimeout(ctx, s.timeout)
	pct, err := s.sim.ComputeBaseline(simCtx, snap.SimTeams(""), snap.SimFixtures(""))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("compute baseline: %w", err)
	}

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		if errors.Is(err, tournament.ErrStaleSnapshot) {
			s.logger.WithField("version", snap.Version()).Warn("Discarding stale standings snapshot")
		}
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	chances := tournament.ChancesFrom(snap, pct, s.now())
	if err := s.store.SaveChances(ctx, chances); err != nil {
		return nil, fmt.Errorf("save chances: %w", err)
	}

	groups := snap.Groups()
	s.invalidate(ctx, groups)
	s.memo.Clear()

	result := &RefreshResult{
		Version:  snap.Version(),
		Teams:    len(snap.Teams),
		Fixtures: len(snap.Fixtures),
		Groups:   len(groups),
		Duration: time.Since(start),
	}

	s.logger.WithFields(map[string]interface{}{
		"version":  result.Version,
		"teams":    result.Teams,
		"fixtures": result.Fixtures,
		"duration": result.Duration,
	}).Info("Standings refreshed")

	if s.notifier != nil {
		view, err := s.buildStandings(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping standings broadcast")
		} else {
			s.notifier.Broadcast(EventStandings, view)
		}
	}

	return result, nil
}

func (s *Service) invalidate(ctx context.Context, groups []qualification.GroupID) {
	keys := []string{redis.StandingsKey()}
	for _, g := range groups {
		keys = append(keys, redis.ChancesKey(string(g)))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("Cache invalidation failed")
	}
}

// Standings returns the dashboard view
func (s *Service) Standings(ctx context.Context) (*StandingsView, error) {
	var view StandingsView
	err := s.cache.GetOrSet(ctx, redis.StandingsKey(), &view, redis.TTLShort, func() (interface{}, error) {
		return s.buildStandings(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) buildStandings(ctx context.Context) (*StandingsView, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	chances, err := s.store.ListChances(ctx, "")
	if err != nil {
		return nil, err
	}

	table := snap.Table()
	view := &StandingsView{
		PointsTable:          make([]TeamView, 0, len(table)),
		QualificationChances: chances,
		Fixtures:             snap.Fixtures,
		LastUpdated:          snap.Version(),
	}
	if view.QualificationChances == nil {
		view.QualificationChances = []tournament.Chance{}
	}
	if view.Fixtures == nil {
		view.Fixtures = []tournament.Fixture{}
	}
	for _, t := range table {
		view.PointsTable = append(view.PointsTable, newTeamView(t))
	}
	return view, nil
}

// GroupChances returns one group's stored baseline
func (s *Service) GroupChances(ctx context.Context, group qualification.GroupID) (*GroupChancesView, error) {
	var view GroupChancesView
	err := s.cache.GetOrSet(ctx, redis.ChancesKey(string(group)), &view, redis.TTLMedium, func() (interface{}, error) {
		snap, err := s.store.LoadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		known := false
		for _, g := range snap.Groups() {
			if g == group {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, group)
		}

		chances, err := s.store.ListChances(ctx, group)
		if err != nil {
			return nil, err
		}
		if chances == nil {
			chances = []tournament.Chance{}
		}
		return &GroupChancesView{Group: group, Chances: chances, LastUpdated: snap.Version()}, nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Predict forces winner to beat the other team on the current standings
func (s *Service) Predict(ctx context.Context, team1, team2, winner qualification.TeamID) (*PredictionView, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	version := snap.Version()
	key := redis.ImpactKey(string(team1), string(team2), string(winner), version)

	view, ok := s.memo.Get(key, version)
	if !ok {
		if err := s.computeImpact(ctx, snap, key, &view, team1, team2, winner); err != nil {
			return nil, err
		}
		s.memo.Put(key, version, view)
	}

	view.ID = uuid.NewString()
	s.record(ctx, &view, team1, team2)
	return &view, nil
}

// computeImpact fills view through the shared cache
func (s *Service) computeImpact(ctx context.Context, snap *tournament.Snapshot, key string, view *PredictionView, team1, team2, winner qualification.TeamID) error {
	return s.cache.GetOrSet(ctx, key, view, redis.TTLLong, func() (interface{}, error) {
		simCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		res, err := s.sim.ComputeImpact(simCtx, snap.SimTeams(""), snap.SimFixtures(""), team1, team2, winner)
		if err != nil {
			return nil, err
		}
		return newPredictionView(snap, res), nil
	})
}

// Memo exposes the in-process impact memo for maintenance jobs
func (s *Service) Memo() *ImpactMemo {
	return s.memo
}

// record appends to the prediction log; failures only warn
func (s *Service) record(ctx context.Context, view *PredictionView, team1, team2 qualification.TeamID) {
	p := &tournament.Prediction{
		ID:           view.ID,
		Group:        view.Group,
		Team1:        team1,
		Team2:        team2,
		Winner:       view.Winner.TeamID,
		WinnerBefore: view.Winner.BeforeChance,
		WinnerAfter:  view.Winner.AfterChance,
		RippleCount:  len(view.RippleEffects),
		CreatedAt:    s.now(),
	}
	if err := s.store.SavePrediction(ctx, p); err != nil {
		s.logger.WithError(err).WithField("prediction_id", p.ID).Warn("Prediction log write failed")
	}
}

// Prune deletes prediction log rows older than retention
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	removed, err := s.store.PrunePredictions(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	s.logger.WithField("removed", removed).Info("Prediction log pruned")
	return removed, nil
}
