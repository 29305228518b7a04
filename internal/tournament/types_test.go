package tournament

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Teams: []Team{
			{ID: "1", Name: "India", Group: "1", Played: 3, Won: 3, Points: 6, NRR: 1.2},
			{ID: "2", Name: "Australia", Group: "1", Played: 3, Won: 2, Lost: 1, Points: 4, NRR: 0.4},
			{ID: "3", Name: "Afghanistan", Group: "1", Played: 3, Won: 1, Lost: 2, Points: 2, NRR: -0.3},
			{ID: "4", Name: "Bangladesh", Group: "1", Played: 3, Lost: 3, Points: 0, NRR: -1.1},
			{ID: "5", Name: "South Africa", Group: "2", Played: 2, Won: 2, Points: 4, NRR: 0.6},
			{ID: "6", Name: "England", Group: "2", Played: 2, Won: 1, Lost: 1, Points: 2, NRR: 0.9},
			{ID: "7", Name: "West Indies", Group: "2", Played: 2, Won: 1, Lost: 1, Points: 2, NRR: 1.0},
		},
		Fixtures: []Fixture{
			{Team1: "1", Team2: "2"},
			{Team1: "3", Team2: "4"},
			{Team1: "5", Team2: "6", Venue: "Antigua"},
		},
		UpdatedAt: time.Date(2024, 6, 24, 10, 0, 0, 0, time.UTC),
	}
}

func TestSnapshot_Groups(t *testing.T) {
	s := sampleSnapshot()
	s.Teams[0], s.Teams[6] = s.Teams[6], s.Teams[0]

	assert.Equal(t, []qualification.GroupID{"1", "2"}, s.Groups())
}

func TestSnapshot_SimInputs(t *testing.T) {
	s := sampleSnapshot()

	teams := s.SimTeams("2")
	require.Len(t, teams, 3)
	assert.Equal(t, qualification.Team{ID: "5", Name: "South Africa", Group: "2", Points: 4, NRR: 0.6}, teams[0])

	assert.Equal(t, []qualification.Fixture{{TeamA: "5", TeamB: "6"}}, s.SimFixtures("2"))
	assert.Len(t, s.SimTeams(""), 7)
	assert.Len(t, s.SimFixtures(""), 3)
}

func TestSnapshot_Table(t *testing.T) {
	s := sampleSnapshot()

	var ids []qualification.TeamID
	for _, tm := range s.Table() {
		ids = append(ids, tm.ID)
	}
	// West Indies edge England on NRR
	assert.Equal(t, []qualification.TeamID{"1", "2", "3", "4", "5", "7", "6"}, ids)
}

func TestSnapshot_TeamByID(t *testing.T) {
	s := sampleSnapshot()

	tm, ok := s.TeamByID("6")
	require.True(t, ok)
	assert.Equal(t, "England", tm.Name)

	_, ok = s.TeamByID("99")
	assert.False(t, ok)
}

func TestSnapshot_ValidateFillsDefaults(t *testing.T) {
	s := sampleSnapshot()
	s.UpdatedAt = time.Time{}

	require.NoError(t, s.Validate())

	assert.Equal(t, "1-2-1", s.Fixtures[0].ID)
	assert.Equal(t, qualification.GroupID("1"), s.Fixtures[0].Group)
	assert.Equal(t, qualification.GroupID("2"), s.Fixtures[2].Group)
	assert.False(t, s.UpdatedAt.IsZero())
}

func TestSnapshot_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"no teams", func(s *Snapshot) { s.Teams = nil }},
		{"empty id", func(s *Snapshot) { s.Teams[0].ID = "" }},
		{"no group", func(s *Snapshot) { s.Teams[0].Group = "" }},
		{"negative points", func(s *Snapshot) { s.Teams[0].Points = -2 }},
		{"nan nrr", func(s *Snapshot) { s.Teams[0].NRR = math.NaN() }},
		{"duplicate team", func(s *Snapshot) { s.Teams[1].ID = "1" }},
		{"unknown team", func(s *Snapshot) { s.Fixtures[0].Team2 = "99" }},
		{"self fixture", func(s *Snapshot) { s.Fixtures[0].Team2 = "1" }},
		{"cross group", func(s *Snapshot) { s.Fixtures[0].Team2 = "5" }},
		{"wrong group label", func(s *Snapshot) { s.Fixtures[0].Group = "2" }},
		{"duplicate fixture id", func(s *Snapshot) {
			s.Fixtures[0].ID = "x"
			s.Fixtures[1].ID = "x"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSnapshot()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSnapshot), "got %v", err)
		})
	}
}

func TestChancesFrom(t *testing.T) {
	s := sampleSnapshot()
	at := time.Date(2024, 6, 24, 11, 0, 0, 0, time.UTC)

	pct, err := qualification.ComputeBaseline(s.SimTeams(""), s.SimFixtures(""))
	require.NoError(t, err)

	chances := ChancesFrom(s, pct, at)
	require.Len(t, chances, len(s.Teams))

	assert.Equal(t, qualification.TeamID("1"), chances[0].TeamID)
	assert.Equal(t, qualification.StatusQualified, chances[0].Status)
	assert.Equal(t, at, chances[0].ComputedAt)

	for _, c := range chances {
		assert.Equal(t, qualification.StatusOf(c.Percentage), c.Status)
	}
}
