// Package heuristics implements MRV slot selection and LCV candidate
// ordering for the Backtracker.
//
// The "smallest domain, then tie-break" shape of SelectMRV collects the
// slots tied for fewest remaining possibilities, then orders them by the
// configured tie-break rules instead of always taking the first one found.
package heuristics

import (
	"math/rand/v2"
	"sort"

	"github.com/crosswarped/xwsolver/domain"
	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/slot"
)

// TieBreak names one MRV tie-breaking rule.
type TieBreak string

const (
	CrossingsDesc TieBreak = "crossingsDesc"
	LenDesc       TieBreak = "lenDesc"
	AlphaAsc      TieBreak = "alphaAsc"
)

// DefaultTieBreak is the default MRV tie-break order.
var DefaultTieBreak = []TieBreak{CrossingsDesc, LenDesc, AlphaAsc}

// SelectMRV picks the unassigned slot with the smallest domain from
// candidates, applying tieBreak in order to break ties. If useFrontier is
// true and frontier is non-empty, the search is restricted to slots in
// frontier, falling back to all candidates when the frontier is empty.
func SelectMRV(candidates []slot.ID, slots map[slot.ID]*slot.Slot, domains *domain.Manager, tieBreak []TieBreak, frontier map[slot.ID]bool, useFrontier bool) (slot.ID, bool) {
	pool := candidates
	if useFrontier && len(frontier) > 0 {
		var restricted []slot.ID
		for _, id := range candidates {
			if frontier[id] {
				restricted = append(restricted, id)
			}
		}
		if len(restricted) > 0 {
			pool = restricted
		}
	}
	if len(pool) == 0 {
		return "", false
	}

	min := -1
	for _, id := range pool {
		n := domains.Len(id)
		if min == -1 || n < min {
			min = n
		}
	}

	var tied []slot.ID
	for _, id := range pool {
		if domains.Len(id) == min {
			tied = append(tied, id)
		}
	}

	if len(tieBreak) == 0 {
		tieBreak = DefaultTieBreak
	}
	sort.SliceStable(tied, func(i, j int) bool {
		a, b := tied[i], tied[j]
		for _, rule := range tieBreak {
			switch rule {
			case CrossingsDesc:
				la, lb := len(slots[a].Crossings), len(slots[b].Crossings)
				if la != lb {
					return la > lb
				}
			case LenDesc:
				if slots[a].Length != slots[b].Length {
					return slots[a].Length > slots[b].Length
				}
			case AlphaAsc:
				if a != b {
					return a < b
				}
			}
		}
		return false
	})

	return tied[0], true
}

// Frontier returns the set of unassigned slot IDs that cross at least one
// assigned slot.
func Frontier(slots map[slot.ID]*slot.Slot, assigned map[slot.ID]string) map[slot.ID]bool {
	frontier := make(map[slot.ID]bool)
	for id, s := range slots {
		if _, done := assigned[id]; done {
			continue
		}
		for _, cr := range s.Crossings {
			if _, done := assigned[cr.Other]; done {
				frontier[id] = true
				break
			}
		}
	}
	return frontier
}

// neighborCapDefault is the per-neighbor cap on counted remaining
// candidates, preventing one hugely permissive neighbor from dominating
// the LCV score.
const neighborCapDefault = 50

// OrderCandidates orders a slot's candidates by Least-Constraining-Value:
// the sum, over each crossing, of the (capped) number of candidates the
// neighbor would retain if word were placed. Higher score is tried first.
// When depth is 0 the candidates are simply sorted alphabetically.
func OrderCandidates(candidates []string, s *slot.Slot, g *grid.Grid, slots map[slot.ID]*slot.Slot, used domain.Used, idx *pattern.Index, depth int) []string {
	out := append([]string(nil), candidates...)
	if depth <= 0 {
		sort.Strings(out)
		return out
	}

	type scored struct {
		word  string
		score int
	}
	scoredList := make([]scored, len(out))
	for i, word := range out {
		scoredList[i] = scored{word: word, score: lcvScore(word, s, g, slots, used, idx)}
	}
	sort.SliceStable(scoredList, func(i, j int) bool {
		if scoredList[i].score != scoredList[j].score {
			return scoredList[i].score > scoredList[j].score
		}
		return scoredList[i].word < scoredList[j].word
	})
	for i, sc := range scoredList {
		out[i] = sc.word
	}
	return out
}

func lcvScore(word string, s *slot.Slot, g *grid.Grid, slots map[slot.ID]*slot.Slot, used domain.Used, idx *pattern.Index) int {
	total := 0
	for _, cr := range s.Crossings {
		neighbor := slots[cr.Other]
		if neighbor == nil {
			continue
		}
		projected := []rune(neighbor.Pattern(g, '_'))
		if cr.AtOther < 0 || cr.AtOther >= len(projected) {
			continue
		}
		projected[cr.AtOther] = rune(word[cr.AtThis])

		limit := neighborCapDefault + len(used) + 1
		results := pattern.CandidatesForPattern(idx, neighbor.Length, string(projected), '_', pattern.QueryOptions{Limit: &limit})
		count := 0
		for _, r := range results {
			if !used[r] {
				count++
			}
		}
		if count > neighborCapDefault {
			count = neighborCapDefault
		}
		total += count
	}
	return total
}

// Shuffle randomizes ordering in place, used when ShuffleCandidates is
// configured after LCV ordering.
func Shuffle(words []string, rng *rand.Rand) {
	rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
}
