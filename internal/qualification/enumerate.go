package qualification

import "iter"

// branchCount is 2^n for n remaining fixtures
func branchCount(n int) uint64 {
	return uint64(1) << uint(n)
}

// resolve writes the points table of branch k into dst.
// Bit i of k = 0 -> TeamA of fixture i wins, 1 -> TeamB wins.
func (g *group) resolve(k uint64, dst []int) {
	copy(dst, g.base)
	for i, f := range g.fixtures {
		if k>>uint(i)&1 == 0 {
			dst[f[0]] += WinPoints
		} else {
			dst[f[1]] += WinPoints
		}
	}
}

// Outcomes lazily enumerates every branch of a single group's remaining fixtures,
// in index order 0..2^n-1. Each yielded Branch owns its Points map.
func Outcomes(teams []Team, fixtures []Fixture) (iter.Seq[Branch], error) {
	return outcomesWithLimit(teams, fixtures, DefaultMaxFixtures)
}

func outcomesWithLimit(teams []Team, fixtures []Fixture, maxFixtures int) (iter.Seq[Branch], error) {
	groups, _, err := partition(teams, fixtures)
	if err != nil {
		return nil, err
	}
	if len(groups) != 1 {
		return nil, invalidf("outcomes need a single group, got %d", len(groups))
	}
	g := groups[0]
	if len(g.fixtures) > maxFixtures {
		return nil, &ComputationBoundsError{Group: g.id, Fixtures: len(g.fixtures), Max: maxFixtures}
	}

	total := branchCount(len(g.fixtures))
	return func(yield func(Branch) bool) {
		pts := make([]int, len(g.teams))
		for k := uint64(0); k < total; k++ {
			g.resolve(k, pts)
			b := Branch{Index: k, Points: make(map[TeamID]int, len(g.teams))}
			for i, t := range g.teams {
				b.Points[t.ID] = pts[i]
			}
			if !yield(b) {
				return
			}
		}
	}, nil
}
