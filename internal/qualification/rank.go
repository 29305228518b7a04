package qualification

import "sort"

// Rank orders a group's standings: points desc, then NRR desc.
// There is no third key. Teams level on both keep their input order,
// so the same input always ranks the same way.
func Rank(entries []StandingsEntry) []StandingsEntry {
	ranked := make([]StandingsEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ahead(ranked[i].Points, ranked[i].NRR, ranked[j].Points, ranked[j].NRR)
	})

	return ranked
}

// ahead reports whether a strictly outranks b
func ahead(aPts int, aNRR float64, bPts int, bNRR float64) bool {
	if aPts != bPts {
		return aPts > bPts
	}
	return aNRR > bNRR
}

// topTwo returns the indices of the first and second placed teams.
// Same result as Rank(...)[0:2] without sorting; second is -1 for a one-team group.
func topTwo(points []int, nrr []float64) (first, second int) {
	first, second = 0, -1
	for i := 1; i < len(points); i++ {
		switch {
		case ahead(points[i], nrr[i], points[first], nrr[first]):
			second = first
			first = i
		case second < 0 || ahead(points[i], nrr[i], points[second], nrr[second]):
			second = i
		}
	}
	return first, second
}
