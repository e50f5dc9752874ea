package solver

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/crosswarped/xwsolver/difficulty"
	"github.com/crosswarped/xwsolver/layout"
	"github.com/crosswarped/xwsolver/pattern"
)

// Plan generates a layout and solves it, retrying on repeated dead-ends by
// splitting a rescue block pair into the grid when cfg allows it. It gives
// up once MaxRescuePairs rescue attempts have been spent.
func Plan(ctx context.Context, n, minEntryLen int, idx *pattern.Index, cfg difficulty.Config, rng *rand.Rand, opts Options) (Result, error) {
	g, err := layout.Generate(n, minEntryLen, cfg.BlockBudget, rng)
	if err != nil {
		return Result{}, fmt.Errorf("solver: layout infeasible: %w", err)
	}

	res := Solve(ctx, g, idx, cfg, opts)
	if res.OK || !cfg.AllowRescueBlocks {
		return res, nil
	}

	for attempt := 0; attempt < cfg.MaxRescuePairs; attempt++ {
		if !isDeadEnd(res.Reason) {
			return res, nil
		}
		rescued := g.Clone()
		if err := layout.AddRescueBlockPair(rescued, minEntryLen, rng); err != nil {
			return res, nil
		}
		g = rescued
		res = Solve(ctx, g, idx, cfg, opts)
		if res.OK {
			return res, nil
		}
	}
	return res, nil
}

func isDeadEnd(reason Reason) bool {
	switch reason {
	case NoSelectableSlot, ExhaustedAllCandidates, DeadEndNoMoreChoices:
		return true
	default:
		return false
	}
}
