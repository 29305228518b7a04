package qualification

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// ComputeImpact forces winner to beat the other team and reports how every
// chance in their group moves.
//
// Before values use the current points and the full fixture list. After values
// drop the forced fixture (one occurrence, either orientation) and credit the
// winner with WinPoints. Other group members whose change exceeds
// RippleThreshold are also listed in Ripples.
func (s *Simulator) ComputeImpact(
	ctx context.Context,
	teams []Team,
	fixtures []Fixture,
	team1, team2, winner TeamID,
) (*ImpactResult, error) {
	if team1 == team2 {
		return nil, invalidf("team1 and team2 are both %s", team1)
	}
	if winner != team1 && winner != team2 {
		return nil, invalidf("winner %s is neither %s nor %s", winner, team1, team2)
	}

	_, byTeam, err := partition(teams, fixtures)
	if err != nil {
		return nil, err
	}
	g, ok := byTeam[team1]
	if !ok {
		return nil, invalidf("team %s is not in the standings", team1)
	}
	g2, ok := byTeam[team2]
	if !ok {
		return nil, invalidf("team %s is not in the standings", team2)
	}
	if g != g2 {
		return nil, invalidf("teams %s and %s are in different groups (%q, %q)", team1, team2, g.id, g2.id)
	}
	if err := s.checkBounds(g); err != nil {
		return nil, err
	}

	forced := forceResult(g, team1, team2, winner)

	var before, after map[TeamID]Percentage
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		before, err = s.run(egCtx, g)
		return err
	})
	eg.Go(func() error {
		var err error
		after, err = s.run(egCtx, forced)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	loser := team2
	if winner == team2 {
		loser = team1
	}

	result := &ImpactResult{
		Group:   g.id,
		Others:  []TeamImpact{},
		Ripples: []TeamImpact{},
	}
	for _, t := range g.teams {
		ti := newTeamImpact(t, before[t.ID], after[t.ID])
		switch t.ID {
		case winner:
			result.Winner = ti
		case loser:
			result.Loser = ti
		default:
			result.Others = append(result.Others, ti)
			if math.Abs(ti.Change) > RippleThreshold {
				result.Ripples = append(result.Ripples, ti)
			}
		}
	}

	return result, nil
}

// forceResult returns the group with the match between a and b decided for winner
func forceResult(g *group, a, b, winner TeamID) *group {
	ia, ib := g.index[a], g.index[b]

	remaining := make([][2]int, 0, len(g.fixtures))
	removed := false
	for _, f := range g.fixtures {
		if !removed && ((f[0] == ia && f[1] == ib) || (f[0] == ib && f[1] == ia)) {
			removed = true
			continue
		}
		remaining = append(remaining, f)
	}

	base := make([]int, len(g.base))
	copy(base, g.base)
	base[g.index[winner]] += WinPoints

	return g.withFixtures(remaining).withBase(base)
}

func newTeamImpact(t Team, before, after Percentage) TeamImpact {
	change := float64(after) - float64(before)
	return TeamImpact{
		TeamID:    t.ID,
		Name:      t.Name,
		Before:    before,
		After:     after,
		Change:    change,
		Direction: DirectionOf(change),
	}
}
