package qualification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Tournament constants
// ⭐ SSOT: points per win, advancing places and ripple threshold live here only
const (
	WinPoints          = 2   // points awarded per win, no draws
	QualifyingSpots    = 2   // top 2 of each group advance
	RippleThreshold    = 0.5 // percentage points
	DefaultMaxFixtures = 20  // 2^20 branches per group
)

// TeamID identifies a team within the tournament.
// Feeds deliver ids as numbers or strings; both decode to the same TeamID.
type TeamID string

// UnmarshalJSON accepts 7 and "7" alike
func (id *TeamID) UnmarshalJSON(data []byte) error {
	s, err := decodeLooseID(data)
	if err != nil {
		return fmt.Errorf("team id: %w", err)
	}
	*id = TeamID(s)
	return nil
}

// GroupID identifies a group ("1", "2", "A" ...)
type GroupID string

// UnmarshalJSON accepts numeric and string group ids
func (g *GroupID) UnmarshalJSON(data []byte) error {
	s, err := decodeLooseID(data)
	if err != nil {
		return fmt.Errorf("group id: %w", err)
	}
	*g = GroupID(s)
	return nil
}

func decodeLooseID(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	// 7.0 and 7 are the same team
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", err
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return n.String(), nil
}

// Team is one group member as supplied by the caller for a single run
type Team struct {
	ID     TeamID  `json:"teamId" yaml:"id"`
	Name   string  `json:"teamName" yaml:"name"`
	Group  GroupID `json:"groupName" yaml:"group"`
	Points int     `json:"points" yaml:"points"`
	NRR    float64 `json:"nrr" yaml:"nrr"` // tie-break only
}

// Fixture is an unplayed group match. Exactly one side gets WinPoints.
type Fixture struct {
	TeamA TeamID `json:"team1Id" yaml:"team1"`
	TeamB TeamID `json:"team2Id" yaml:"team2"`
}

// Involves reports whether the fixture is between a and b in either orientation
func (f Fixture) Involves(a, b TeamID) bool {
	return (f.TeamA == a && f.TeamB == b) || (f.TeamA == b && f.TeamB == a)
}

// Percentage is a qualification chance in [0, 100]
type Percentage float64

// Direction of a change in qualification chance
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// DirectionOf returns UP for a positive delta, DOWN otherwise
func DirectionOf(delta float64) Direction {
	if delta > 0 {
		return DirectionUp
	}
	return DirectionDown
}

// Status is the dashboard badge derived from a percentage
type Status string

const (
	StatusQualified    Status = "QUALIFIED"
	StatusEliminated   Status = "ELIMINATED"
	StatusInContention Status = "IN_CONTENTION"
)

// StatusOf maps 100% to QUALIFIED and 0% to ELIMINATED
func StatusOf(p Percentage) Status {
	switch {
	case p >= 100:
		return StatusQualified
	case p <= 0:
		return StatusEliminated
	default:
		return StatusInContention
	}
}

// StandingsEntry is a team's position inside one enumerated branch
type StandingsEntry struct {
	TeamID TeamID  `json:"teamId"`
	Points int     `json:"points"`
	NRR    float64 `json:"nrr"`
}

// Branch is one fully resolved assignment of winners to the remaining fixtures
type Branch struct {
	Index  uint64
	Points map[TeamID]int
}

// TeamImpact is the before/after chance of one team under a forced result
type TeamImpact struct {
	TeamID    TeamID     `json:"teamId"`
	Name      string     `json:"teamName"`
	Before    Percentage `json:"beforeChance"`
	After     Percentage `json:"afterChance"`
	Change    float64    `json:"change"`
	Direction Direction  `json:"direction"`
}

// ImpactResult is the outcome of a what-if run
type ImpactResult struct {
	Group   GroupID      `json:"group"`
	Winner  TeamImpact   `json:"winner"`
	Loser   TeamImpact   `json:"loser"`
	Others  []TeamImpact `json:"others"`
	Ripples []TeamImpact `json:"rippleEffects"`
}
