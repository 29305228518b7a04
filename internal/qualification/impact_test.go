package qualification

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Group used by the hand-worked impact cases.
//
//	A 4 (0)  B 4 (1)  C 2 (0)  D 2 (2); remaining C-D, A-C
//	baseline: A 50, B 75, C 25, D 50
//	C beats D: A 50, B 100, C 50, D 0
func rippleGroup() ([]Team, []Fixture) {
	teams := []Team{team("A", 4, 0), team("B", 4, 1), team("C", 2, 0), team("D", 2, 2)}
	fixtures := []Fixture{fx("C", "D"), fx("A", "C")}
	return teams, fixtures
}

func TestComputeImpact_RippleEffects(t *testing.T) {
	teams, fixtures := rippleGroup()

	before, err := ComputeBaseline(teams, fixtures)
	require.NoError(t, err)
	assert.Equal(t, map[TeamID]Percentage{"A": 50, "B": 75, "C": 25, "D": 50}, before)

	res, err := ComputeImpact(teams, fixtures, "C", "D", "C")
	require.NoError(t, err)

	assert.Equal(t, GroupID("1"), res.Group)

	assert.Equal(t, TeamID("C"), res.Winner.TeamID)
	assert.Equal(t, Percentage(25), res.Winner.Before)
	assert.Equal(t, Percentage(50), res.Winner.After)
	assert.Equal(t, 25.0, res.Winner.Change)
	assert.Equal(t, DirectionUp, res.Winner.Direction)

	assert.Equal(t, TeamID("D"), res.Loser.TeamID)
	assert.Equal(t, Percentage(50), res.Loser.Before)
	assert.Equal(t, Percentage(0), res.Loser.After)
	assert.Equal(t, -50.0, res.Loser.Change)
	assert.Equal(t, DirectionDown, res.Loser.Direction)

	require.Len(t, res.Others, 2)
	assert.Equal(t, TeamID("A"), res.Others[0].TeamID)
	assert.Equal(t, 0.0, res.Others[0].Change)

	require.Len(t, res.Ripples, 1)
	assert.Equal(t, TeamID("B"), res.Ripples[0].TeamID)
	assert.Equal(t, Percentage(75), res.Ripples[0].Before)
	assert.Equal(t, Percentage(100), res.Ripples[0].After)
	assert.Equal(t, DirectionUp, res.Ripples[0].Direction)
}

func TestComputeImpact_OrientationDoesNotMatter(t *testing.T) {
	teams, fixtures := rippleGroup()

	a, err := ComputeImpact(teams, fixtures, "C", "D", "C")
	require.NoError(t, err)
	b, err := ComputeImpact(teams, fixtures, "D", "C", "C")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestComputeImpact_Idempotent(t *testing.T) {
	teams := []Team{team("A", 2, 0.4), team("B", 2, -0.2), team("C", 0, 0.9), team("D", 0, -1.1)}
	fixtures := []Fixture{fx("A", "B"), fx("C", "D"), fx("A", "C"), fx("B", "D"), fx("A", "D")}

	first, err := ComputeImpact(teams, fixtures, "B", "D", "D")
	require.NoError(t, err)
	second, err := ComputeImpact(teams, fixtures, "B", "D", "D")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// After values must equal a fresh baseline over the adjusted standings.
func TestComputeImpact_MatchesReenumeration(t *testing.T) {
	teams := []Team{
		team("A", 4, 0.8), team("B", 4, -0.3), team("C", 2, 1.4),
		team("D", 2, 0.1), team("E", 0, -0.9),
	}
	fixtures := []Fixture{
		fx("A", "B"), fx("C", "D"), fx("B", "E"), fx("A", "D"), fx("C", "E"), fx("B", "C"),
	}

	for _, winner := range []TeamID{"B", "C"} {
		res, err := ComputeImpact(teams, fixtures, "B", "C", winner)
		require.NoError(t, err)

		adjusted := make([]Team, len(teams))
		copy(adjusted, teams)
		for i := range adjusted {
			if adjusted[i].ID == winner {
				adjusted[i].Points += WinPoints
			}
		}
		wantAfter := referenceBaseline(t, adjusted, fixtures[:5])
		wantBefore := referenceBaseline(t, teams, fixtures)

		all := append([]TeamImpact{res.Winner, res.Loser}, res.Others...)
		require.Len(t, all, len(teams))
		for _, ti := range all {
			assert.Equal(t, wantBefore[ti.TeamID], ti.Before, "before %s", ti.TeamID)
			assert.Equal(t, wantAfter[ti.TeamID], ti.After, "after %s", ti.TeamID)
			assert.Equal(t, DirectionOf(ti.Change), ti.Direction)
		}

		for _, o := range res.Others {
			inRipples := false
			for _, r := range res.Ripples {
				if r.TeamID == o.TeamID {
					inRipples = true
				}
			}
			assert.Equal(t, math.Abs(o.Change) > RippleThreshold, inRipples, "ripple flag %s", o.TeamID)
		}
	}
}

func TestComputeImpact_FixtureNotScheduled(t *testing.T) {
	// A hypothetical rematch that is not in the remaining list still credits the winner
	teams := []Team{team("A", 0, 0), team("B", 0, 1), team("C", 0, 2)}

	res, err := ComputeImpact(teams, nil, "A", "B", "A")
	require.NoError(t, err)

	assert.Equal(t, Percentage(0), res.Winner.Before)
	assert.Equal(t, Percentage(100), res.Winner.After)
	assert.Equal(t, Percentage(100), res.Loser.Before)
	assert.Equal(t, Percentage(0), res.Loser.After)
}

func TestComputeImpact_LeavesOtherGroupsAlone(t *testing.T) {
	teams, fixtures := rippleGroup()
	teams = append(teams, Team{ID: "X", Group: "2"}, Team{ID: "Y", Group: "2", NRR: 1})
	fixtures = append(fixtures, fx("X", "Y"))

	res, err := ComputeImpact(teams, fixtures, "C", "D", "C")
	require.NoError(t, err)

	assert.Len(t, res.Others, 2)
	for _, o := range res.Others {
		assert.NotContains(t, []TeamID{"X", "Y"}, o.TeamID)
	}
}

func TestComputeImpact_InvalidInput(t *testing.T) {
	teams, fixtures := rippleGroup()
	teams = append(teams, Team{ID: "X", Group: "2"})

	tests := []struct {
		name                  string
		team1, team2, winner TeamID
	}{
		{"same team", "A", "A", "A"},
		{"winner not playing", "A", "B", "C"},
		{"team1 absent", "Q", "B", "B"},
		{"team2 absent", "A", "Q", "A"},
		{"different groups", "A", "X", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ComputeImpact(teams, fixtures, tt.team1, tt.team2, tt.winner)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestComputeImpact_Bounds(t *testing.T) {
	teams := []Team{team("A", 0, 0), team("B", 0, 0)}
	many := make([]Fixture, DefaultMaxFixtures+1)
	for i := range many {
		many[i] = fx("A", "B")
	}

	_, err := ComputeImpact(teams, many, "A", "B", "A")
	assert.True(t, errors.Is(err, ErrComputationBounds))
}
