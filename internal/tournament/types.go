package tournament

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
)

// ErrInvalidSnapshot is wrapped by every Validate failure
var ErrInvalidSnapshot = errors.New("invalid standings snapshot")

// ErrNoSnapshot is returned before the first successful sync
var ErrNoSnapshot = errors.New("no standings snapshot stored yet")

// ErrStaleSnapshot is returned by SaveSnapshot when a newer snapshot is held
var ErrStaleSnapshot = errors.New("snapshot is older than the stored one")

// Team is one row of the points table
// ⭐ SSOT: the stored shape of a team
type Team struct {
	ID        qualification.TeamID  `json:"teamId"`
	Name      string                `json:"teamName"`
	ShortName string                `json:"shortName"`
	FlagEmoji string                `json:"flagEmoji"`
	Group     qualification.GroupID `json:"groupName"`
	Played    int                   `json:"played"`
	Won       int                   `json:"won"`
	Lost      int                   `json:"lost"`
	NoResult  int                   `json:"noResult"`
	Points    int                   `json:"points"`
	NRR       float64               `json:"nrr"`
}

// Fixture is a scheduled, unplayed group match
type Fixture struct {
	ID       string                `json:"id"`
	Group    qualification.GroupID `json:"groupName"`
	Team1    qualification.TeamID  `json:"team1Id"`
	Team2    qualification.TeamID  `json:"team2Id"`
	StartsAt time.Time             `json:"startsAt,omitempty"`
	Venue    string                `json:"venue,omitempty"`
}

// Chance is a stored baseline result for one team
type Chance struct {
	TeamID     qualification.TeamID     `json:"teamId"`
	Group      qualification.GroupID    `json:"groupName"`
	Percentage qualification.Percentage `json:"qualifyPercentage"`
	Status     qualification.Status     `json:"status"`
	ComputedAt time.Time                `json:"computedAt"`
}

// Prediction is the audit row written for every what-if request
type Prediction struct {
	ID           string
	Group        qualification.GroupID
	Team1        qualification.TeamID
	Team2        qualification.TeamID
	Winner       qualification.TeamID
	WinnerBefore qualification.Percentage
	WinnerAfter  qualification.Percentage
	RippleCount  int
	CreatedAt    time.Time
}

// Snapshot is the whole tournament state at one instant
type Snapshot struct {
	Teams     []Team    `json:"teams"`
	Fixtures  []Fixture `json:"fixtures"`
	UpdatedAt time.Time `json:"lastUpdated"`
}

// Version identifies the snapshot for cache keys (unix ms)
func (s *Snapshot) Version() int64 {
	return s.UpdatedAt.UnixMilli()
}

// Groups returns the distinct group ids, sorted
func (s *Snapshot) Groups() []qualification.GroupID {
	seen := make(map[qualification.GroupID]bool)
	var groups []qualification.GroupID
	for _, t := range s.Teams {
		if !seen[t.Group] {
			seen[t.Group] = true
			groups = append(groups, t.Group)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

// TeamByID looks a team up
func (s *Snapshot) TeamByID(id qualification.TeamID) (Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// SimTeams returns the simulator input for one group; "" selects every team
func (s *Snapshot) SimTeams(group qualification.GroupID) []qualification.Team {
	out := make([]qualification.Team, 0, len(s.Teams))
	for _, t := range s.Teams {
		if group != "" && t.Group != group {
			continue
		}
		out = append(out, qualification.Team{
			ID:     t.ID,
			Name:   t.Name,
			Group:  t.Group,
			Points: t.Points,
			NRR:    t.NRR,
		})
	}
	return out
}

// SimFixtures returns the remaining fixtures of one group; "" selects all
func (s *Snapshot) SimFixtures(group qualification.GroupID) []qualification.Fixture {
	out := make([]qualification.Fixture, 0, len(s.Fixtures))
	for _, f := range s.Fixtures {
		if group != "" && f.Group != group {
			continue
		}
		out = append(out, qualification.Fixture{TeamA: f.Team1, TeamB: f.Team2})
	}
	return out
}

// Table returns the teams ordered the way the points table shows them:
// by group, then points desc and NRR desc.
func (s *Snapshot) Table() []Team {
	byID := make(map[qualification.TeamID]Team, len(s.Teams))
	for _, t := range s.Teams {
		byID[t.ID] = t
	}

	out := make([]Team, 0, len(s.Teams))
	for _, g := range s.Groups() {
		var entries []qualification.StandingsEntry
		for _, t := range s.Teams {
			if t.Group == g {
				entries = append(entries, qualification.StandingsEntry{TeamID: t.ID, Points: t.Points, NRR: t.NRR})
			}
		}
		for _, e := range qualification.Rank(entries) {
			out = append(out, byID[e.TeamID])
		}
	}
	return out
}

// Validate checks the snapshot can be stored and simulated.
// Fixture ids and groups are filled in when missing.
func (s *Snapshot) Validate() error {
	if len(s.Teams) == 0 {
		return fmt.Errorf("%w: no teams", ErrInvalidSnapshot)
	}

	teams := make(map[qualification.TeamID]Team, len(s.Teams))
	for _, t := range s.Teams {
		switch {
		case t.ID == "":
			return fmt.Errorf("%w: team %q has no id", ErrInvalidSnapshot, t.Name)
		case t.Group == "":
			return fmt.Errorf("%w: team %s has no group", ErrInvalidSnapshot, t.ID)
		case t.Points < 0 || t.Played < 0 || t.Won < 0 || t.Lost < 0 || t.NoResult < 0:
			return fmt.Errorf("%w: team %s has negative counters", ErrInvalidSnapshot, t.ID)
		case math.IsNaN(t.NRR) || math.IsInf(t.NRR, 0):
			return fmt.Errorf("%w: team %s has non-finite NRR", ErrInvalidSnapshot, t.ID)
		}
		if _, dup := teams[t.ID]; dup {
			return fmt.Errorf("%w: duplicate team %s", ErrInvalidSnapshot, t.ID)
		}
		teams[t.ID] = t
	}

	ids := make(map[string]bool, len(s.Fixtures))
	for i := range s.Fixtures {
		f := &s.Fixtures[i]
		t1, ok1 := teams[f.Team1]
		t2, ok2 := teams[f.Team2]
		switch {
		case !ok1 || !ok2:
			return fmt.Errorf("%w: fixture %s-%s names an unknown team", ErrInvalidSnapshot, f.Team1, f.Team2)
		case f.Team1 == f.Team2:
			return fmt.Errorf("%w: fixture %s-%s pits a team against itself", ErrInvalidSnapshot, f.Team1, f.Team2)
		case t1.Group != t2.Group:
			return fmt.Errorf("%w: fixture %s-%s crosses groups", ErrInvalidSnapshot, f.Team1, f.Team2)
		}
		if f.Group == "" {
			f.Group = t1.Group
		}
		if f.Group != t1.Group {
			return fmt.Errorf("%w: fixture %s-%s listed in group %s", ErrInvalidSnapshot, f.Team1, f.Team2, f.Group)
		}
		if f.ID == "" {
			f.ID = fmt.Sprintf("%s-%s-%d", f.Team1, f.Team2, i+1)
		}
		if ids[f.ID] {
			return fmt.Errorf("%w: duplicate fixture id %s", ErrInvalidSnapshot, f.ID)
		}
		ids[f.ID] = true
	}

	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// ChancesFrom turns baseline percentages into stored rows, in points-table order
func ChancesFrom(s *Snapshot, pct map[qualification.TeamID]qualification.Percentage, at time.Time) []Chance {
	out := make([]Chance, 0, len(pct))
	for _, t := range s.Table() {
		p, ok := pct[t.ID]
		if !ok {
			continue
		}
		out = append(out, Chance{
			TeamID:     t.ID,
			Group:      t.Group,
			Percentage: p,
			Status:     qualification.StatusOf(p),
			ComputedAt: at,
		})
	}
	return out
}
