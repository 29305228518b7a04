package qualification

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config holds simulator limits
type Config struct {
	MaxFixtures int // per group; 0 means DefaultMaxFixtures
	Workers     int // per group; 0 means runtime.NumCPU()
}

// DefaultConfig returns the default limits
func DefaultConfig() Config {
	return Config{
		MaxFixtures: DefaultMaxFixtures,
		Workers:     runtime.NumCPU(),
	}
}

// Simulator computes qualification chances by exhaustive enumeration.
// ⭐ SSOT: all qualification maths goes through this type.
// It carries configuration only; every call works on the data it is given.
type Simulator struct {
	config Config
	logger zerolog.Logger
}

// NewSimulator creates a simulator
func NewSimulator(config Config, logger zerolog.Logger) *Simulator {
	if config.MaxFixtures <= 0 {
		config.MaxFixtures = DefaultMaxFixtures
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &Simulator{
		config: config,
		logger: logger.With().Str("component", "qualification").Logger(),
	}
}

// Config returns the effective limits
func (s *Simulator) Config() Config {
	return s.config
}

var (
	defaultSim     *Simulator
	defaultSimOnce sync.Once
)

func defaultSimulator() *Simulator {
	defaultSimOnce.Do(func() {
		defaultSim = NewSimulator(DefaultConfig(), zerolog.Nop())
	})
	return defaultSim
}

// ComputeBaseline runs the default simulator without a deadline
func ComputeBaseline(teams []Team, fixtures []Fixture) (map[TeamID]Percentage, error) {
	return defaultSimulator().ComputeBaseline(context.Background(), teams, fixtures)
}

// ComputeImpact runs the default simulator without a deadline
func ComputeImpact(teams []Team, fixtures []Fixture, team1, team2, winner TeamID) (*ImpactResult, error) {
	return defaultSimulator().ComputeImpact(context.Background(), teams, fixtures, team1, team2, winner)
}

// ComputeBaseline returns every team's qualification percentage.
// Teams may span several groups; each group is enumerated on its own.
func (s *Simulator) ComputeBaseline(ctx context.Context, teams []Team, fixtures []Fixture) (map[TeamID]Percentage, error) {
	groups, _, err := partition(teams, fixtures)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if err := s.checkBounds(g); err != nil {
			return nil, err
		}
	}

	results := make([]map[TeamID]Percentage, len(groups))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, g := range groups {
		eg.Go(func() error {
			pct, err := s.run(egCtx, g)
			if err != nil {
				return err
			}
			results[i] = pct
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[TeamID]Percentage, len(teams))
	for _, pct := range results {
		for id, p := range pct {
			out[id] = p
		}
	}
	return out, nil
}

func (s *Simulator) checkBounds(g *group) error {
	if len(g.fixtures) > s.config.MaxFixtures {
		return &ComputationBoundsError{Group: g.id, Fixtures: len(g.fixtures), Max: s.config.MaxFixtures}
	}
	return nil
}

// run enumerates a single, already validated group
func (s *Simulator) run(ctx context.Context, g *group) (map[TeamID]Percentage, error) {
	start := time.Now()

	counts, total, err := g.tally(ctx, s.config.Workers)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("group", string(g.id)).
		Int("teams", len(g.teams)).
		Int("fixtures", len(g.fixtures)).
		Uint64("branches", total).
		Dur("duration", time.Since(start)).
		Msg("Enumeration completed")

	return g.percentages(counts, total), nil
}
