package qualification

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ctxCheckEvery is how many branches a worker walks between context polls
const ctxCheckEvery = 1 << 12

// minBranchesPerWorker keeps tiny enumerations on a single goroutine
const minBranchesPerWorker = 1 << 10

// tally counts, per team, the branches in which it finishes in the top QualifyingSpots.
// The branch range is split across workers; each owns its counters and the
// merge is a plain sum, so the result does not depend on scheduling.
func (g *group) tally(ctx context.Context, workers int) ([]int64, uint64, error) {
	total := branchCount(len(g.fixtures))

	if workers < 1 {
		workers = 1
	}
	if maxUseful := total / minBranchesPerWorker; uint64(workers) > maxUseful {
		workers = int(maxUseful)
		if workers < 1 {
			workers = 1
		}
	}

	chunk := total / uint64(workers)
	if total%uint64(workers) != 0 {
		chunk++
	}

	partials := make([][]int64, workers)
	eg, egCtx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		hi := lo + chunk
		if hi > total {
			hi = total
		}
		eg.Go(func() error {
			counts, err := g.tallyRange(egCtx, lo, hi)
			if err != nil {
				return err
			}
			partials[w] = counts
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	merged := make([]int64, len(g.teams))
	for _, counts := range partials {
		for i, c := range counts {
			merged[i] += c
		}
	}

	return merged, total, nil
}

// tallyRange walks branches [lo, hi)
func (g *group) tallyRange(ctx context.Context, lo, hi uint64) ([]int64, error) {
	counts := make([]int64, len(g.teams))
	pts := make([]int, len(g.teams))

	for k := lo; k < hi; k++ {
		if (k-lo)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		g.resolve(k, pts)
		first, second := topTwo(pts, g.nrr)
		counts[first]++
		if second >= 0 {
			counts[second]++
		}
	}

	return counts, nil
}

// percentages converts counters into 100 * count / total
func (g *group) percentages(counts []int64, total uint64) map[TeamID]Percentage {
	out := make(map[TeamID]Percentage, len(g.teams))
	for i, t := range g.teams {
		out[t.ID] = Percentage(100 * float64(counts[i]) / float64(total))
	}
	return out
}
