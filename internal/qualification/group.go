package qualification

import "math"

// group is the indexed form of one group's input, built once per call.
// Team lookups go through index; the enumeration works on plain slices.
type group struct {
	id       GroupID
	teams    []Team
	index    map[TeamID]int
	base     []int
	nrr      []float64
	fixtures [][2]int
}

func (g *group) withFixtures(fixtures [][2]int) *group {
	return &group{
		id:       g.id,
		teams:    g.teams,
		index:    g.index,
		base:     g.base,
		nrr:      g.nrr,
		fixtures: fixtures,
	}
}

func (g *group) withBase(base []int) *group {
	ng := g.withFixtures(g.fixtures)
	ng.base = base
	return ng
}

// partition validates the input and splits it by group, keeping first-appearance order
func partition(teams []Team, fixtures []Fixture) ([]*group, map[TeamID]*group, error) {
	if len(teams) == 0 {
		return nil, nil, invalidf("no teams supplied")
	}

	var groups []*group
	byGroup := make(map[GroupID]*group)
	byTeam := make(map[TeamID]*group, len(teams))

	for _, t := range teams {
		if t.ID == "" {
			return nil, nil, invalidf("team %q has an empty id", t.Name)
		}
		if _, dup := byTeam[t.ID]; dup {
			return nil, nil, invalidf("team %s supplied twice", t.ID)
		}
		if t.Points < 0 {
			return nil, nil, invalidf("team %s has negative points %d", t.ID, t.Points)
		}
		if math.IsNaN(t.NRR) || math.IsInf(t.NRR, 0) {
			return nil, nil, invalidf("team %s has a non-finite net run rate", t.ID)
		}

		g, ok := byGroup[t.Group]
		if !ok {
			g = &group{id: t.Group, index: make(map[TeamID]int)}
			byGroup[t.Group] = g
			groups = append(groups, g)
		}
		g.index[t.ID] = len(g.teams)
		g.teams = append(g.teams, t)
		g.base = append(g.base, t.Points)
		g.nrr = append(g.nrr, t.NRR)
		byTeam[t.ID] = g
	}

	for i, f := range fixtures {
		if f.TeamA == f.TeamB {
			return nil, nil, invalidf("fixture %d pits team %s against itself", i, f.TeamA)
		}
		ga, okA := byTeam[f.TeamA]
		gb, okB := byTeam[f.TeamB]
		if !okA {
			return nil, nil, invalidf("fixture %d references unknown team %s", i, f.TeamA)
		}
		if !okB {
			return nil, nil, invalidf("fixture %d references unknown team %s", i, f.TeamB)
		}
		if ga != gb {
			return nil, nil, invalidf("fixture %d crosses groups %q and %q", i, ga.id, gb.id)
		}
		ga.fixtures = append(ga.fixtures, [2]int{ga.index[f.TeamA], ga.index[f.TeamB]})
	}

	return groups, byTeam, nil
}
