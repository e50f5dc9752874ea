// Package layout generates a symmetric block pattern within a block-count
// budget, using a center-split algorithm.
//
// The split-index preference order (center first, then alternating
// outward) picks where a single block can legally divide a line in two,
// parameterized by minEntryLen, and drives block placement directly
// instead of a recursive line-enumeration pass.
package layout

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/crosswarped/xwsolver/grid"
)

// BlockBudget bounds the number of block cells a generated layout may have.
type BlockBudget struct {
	Min, Max int
}

type splittableRun struct {
	dir    grid.Direction
	row    int
	col    int
	length int
}

// Generate produces an N x N grid satisfying the symmetry, minimum-run,
// and connectivity invariants, with a block count within budget. rng
// drives every random tie-break, so the same seed reproduces the same
// grid byte-for-byte.
func Generate(n, minEntryLen int, budget BlockBudget, rng *rand.Rand) (*grid.Grid, error) {
	if budget.Min > budget.Max {
		return nil, fmt.Errorf("layout: invalid budget %+v", budget)
	}

	g := grid.NewEmpty(n, minEntryLen)
	target := targetBlockCount(budget)

	for countBlocks(g) < target {
		runs := splittableRuns(g, minEntryLen)
		if len(runs) == 0 {
			break
		}
		sortRunsLongestFirst(runs, rng)

		placed := false
		for _, run := range runs {
			for _, i := range splitOrder(run.length, minEntryLen, rng) {
				r, c := cellForSplit(run, i)
				if err := g.PlaceBlockSymmetric(r, c, false); err == nil {
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			break
		}
	}

	if !g.Validate() {
		return nil, fmt.Errorf("layout: generated grid failed to validate")
	}
	if countBlocks(g) < budget.Min {
		return nil, fmt.Errorf("layout: could not reach block budget minimum %d (got %d)", budget.Min, countBlocks(g))
	}
	if countBlocks(g) > budget.Max {
		return nil, fmt.Errorf("layout: block count %d exceeds block budget maximum %d", countBlocks(g), budget.Max)
	}
	return g, nil
}

// AddRescueBlockPair performs one more iteration of the center-split
// algorithm, for use when the Backtracker hits repeated dead-ends and the
// difficulty configuration allows rescue blocks.
func AddRescueBlockPair(g *grid.Grid, minEntryLen int, rng *rand.Rand) error {
	runs := splittableRuns(g, minEntryLen)
	if len(runs) == 0 {
		return fmt.Errorf("layout: no splittable run available for a rescue block")
	}
	sortRunsLongestFirst(runs, rng)

	for _, run := range runs {
		for _, i := range splitOrder(run.length, minEntryLen, rng) {
			r, c := cellForSplit(run, i)
			if err := g.PlaceBlockSymmetric(r, c, false); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("layout: no legal rescue block placement found")
}

func targetBlockCount(budget BlockBudget) int {
	mid := (budget.Min + budget.Max) / 2
	if mid%2 != 0 {
		mid++
	}
	if mid > budget.Max {
		mid--
	}
	return mid
}

func countBlocks(g *grid.Grid) int {
	n := g.Size()
	count := 0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if g.At(r, c).Kind == grid.Block {
				count++
			}
		}
	}
	return count
}

// splittableRuns returns every run long enough that a single block can
// split it into two legal entries: 2*minEntryLen + 1.
func splittableRuns(g *grid.Grid, minEntryLen int) []splittableRun {
	threshold := 2*minEntryLen + 1
	var out []splittableRun
	for _, run := range g.HorizontalRuns() {
		if run.Length >= threshold {
			out = append(out, splittableRun{dir: grid.Across, row: run.Row, col: run.Col, length: run.Length})
		}
	}
	for _, run := range g.VerticalRuns() {
		if run.Length >= threshold {
			out = append(out, splittableRun{dir: grid.Down, row: run.Row, col: run.Col, length: run.Length})
		}
	}
	return out
}

func sortRunsLongestFirst(runs []splittableRun, rng *rand.Rand) {
	rng.Shuffle(len(runs), func(i, j int) { runs[i], runs[j] = runs[j], runs[i] })
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].length > runs[j].length })
}

// splitOrder returns legal split indices within [minEntryLen, L-minEntryLen-1],
// ordered center-first then alternating outward, randomizing which side of
// an equidistant pair comes first.
func splitOrder(length, minEntryLen int, rng *rand.Rand) []int {
	lo, hi := minEntryLen, length-minEntryLen-1
	if lo > hi {
		return nil
	}
	center := (lo + hi) / 2
	order := []int{center}
	left, right := center-1, center+1
	for left >= lo || right <= hi {
		leftOK, rightOK := left >= lo, right <= hi
		switch {
		case leftOK && rightOK:
			if rng.IntN(2) == 0 {
				order = append(order, left, right)
			} else {
				order = append(order, right, left)
			}
			left--
			right++
		case leftOK:
			order = append(order, left)
			left--
		case rightOK:
			order = append(order, right)
			right++
		}
	}
	return order
}

func cellForSplit(run splittableRun, i int) (row, col int) {
	if run.dir == grid.Across {
		return run.row, run.col + i
	}
	return run.row + i, run.col
}
