// Package solver implements the Backtracker: an iterative, explicit-stack
// DFS over slots that drives the Domain Manager, Heuristics and (optionally)
// the Hydrator to fill a grid with real words.
package solver

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/crosswarped/xwsolver/difficulty"
	"github.com/crosswarped/xwsolver/domain"
	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/heuristics"
	"github.com/crosswarped/xwsolver/hydrate"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/slot"
)

const unknownChar = '_'

// Reason enumerates the ways a solve can fail (or the zero value, the
// empty string, which is never set on a successful result).
type Reason string

const (
	NoSlots                    Reason = "no_slots"
	UnsatisfiableInitialDomains Reason = "unsatisfiable_initial_domains"
	Timeout                    Reason = "timeout"
	BacktrackLimit             Reason = "backtrack_limit"
	NoSelectableSlot           Reason = "no_selectable_slot"
	ExhaustedAllCandidates     Reason = "exhausted_all_candidates"
	DeadEndNoMoreChoices       Reason = "dead_end_no_more_choices"
)

// RunStats carries aggregate counters for one solve call.
type RunStats struct {
	Steps      int
	Backtracks int
	MaxDepth   int
	DurationMs int64
	RunID      string
}

// Result is the structured envelope returned by Solve, identical in shape
// on success and failure except for OK and the presence of Assignments.
type Result struct {
	OK          bool
	Grid        *grid.Grid
	Assignments map[slot.ID]string
	Reason      Reason
	Details     map[string]any
	Stats       RunStats
}

// Options configures one Solve call.
type Options struct {
	RNG      *rand.Rand
	Hydrator *hydrate.Hydrator
	Logger   *slog.Logger
}

// PlacementRecord is the undo data for one committed placement.
type PlacementRecord struct {
	SlotID      slot.ID
	Word        string
	CellChanges []cellChange
	Domains     domain.Snapshot
	Affected    []slot.ID
}

type cellChange struct {
	row, col int
}

// frame is one node on the explicit search stack.
type frame struct {
	slotID     slot.ID
	pattern    string
	candidates []string
	idx        int
	exhausted  bool
	record     *PlacementRecord
}

type nogoodKey struct {
	slotID  slot.ID
	pattern string
}

// Solve fills g against idx under cfg, returning the filled grid and
// slot->word assignments on success, or a structured failure envelope.
func Solve(ctx context.Context, g *grid.Grid, idx *pattern.Index, cfg difficulty.Config, opts Options) Result {
	start := time.Now()
	stats := RunStats{RunID: uuid.NewString()}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 1))
	}

	slots, byID := slot.Build(g)
	if len(slots) == 0 {
		return fail(NoSlots, nil, stats, start)
	}

	dm := domain.NewManager(idx, byID)
	used := domain.Used{}
	dm.InitDomains(g, used)

	empties := emptyDomainSlots(byID, dm, nil)
	if len(empties) > 0 {
		for _, id := range empties {
			if opts.Hydrator != nil {
				opts.Hydrator.HydrateSlot(ctx, dm, g, byID[id], used)
			}
		}
		stillEmpty := emptyDomainSlots(byID, dm, nil)
		if len(stillEmpty) > 0 {
			return fail(UnsatisfiableInitialDomains, map[string]any{"empties": stillEmpty}, stats, start)
		}
	}

	assignments := map[slot.ID]string{}
	var stack []*frame
	nogood := map[nogoodKey]bool{}

	for {
		if cfg.TimeoutMs > 0 && time.Since(start).Milliseconds() >= int64(cfg.TimeoutMs) {
			return fail(Timeout, map[string]any{"assigned": len(assignments)}, stats, start)
		}
		if cfg.MaxBacktracks > 0 && stats.Backtracks >= cfg.MaxBacktracks {
			return fail(BacktrackLimit, map[string]any{"assigned": len(assignments)}, stats, start)
		}
		if len(assignments) == len(slots) {
			stats.DurationMs = time.Since(start).Milliseconds()
			return Result{OK: true, Grid: g, Assignments: assignments, Stats: stats}
		}

		if deadID, ok := findZeroDomain(byID, dm, assignments); ok {
			if opts.Hydrator != nil {
				opts.Hydrator.HydrateSlot(ctx, dm, g, byID[deadID], used)
			}
			if dm.Len(deadID) == 0 {
				if !backtrackOnce(&stack, dm, g, used, assignments, &stats) {
					return fail(DeadEndNoMoreChoices, map[string]any{"deadSlot": deadID}, stats, start)
				}
				continue
			}
		}

		top := currentFrame(stack)
		if top == nil || top.exhausted || top.record != nil {
			candidates := unassignedIDs(dm, assignments)
			frontier := heuristics.Frontier(byID, assignments)
			chosenID, ok := heuristics.SelectMRV(candidates, byID, dm, cfg.TieBreak, frontier, true)
			if !ok {
				if !backtrackOnce(&stack, dm, g, used, assignments, &stats) {
					return fail(NoSelectableSlot, map[string]any{"assigned": len(assignments)}, stats, start)
				}
				continue
			}

			s := byID[chosenID]
			pat := s.Pattern(g, unknownChar)

			var ordered []string
			if nogood[nogoodKey{slotID: chosenID, pattern: pat}] {
				// Already known to be a dead end at this exact pattern; skip
				// hydration and candidate ordering and let the frame exhaust
				// immediately below.
				ordered = nil
			} else {
				if opts.Hydrator != nil && hydrate.ShouldHydrate(dm.Len(chosenID), cfg.HydrateIfBelow) {
					opts.Hydrator.HydrateSlot(ctx, dm, g, s, used)
				}
				ordered = heuristics.OrderCandidates(dm.Domain(chosenID), s, g, byID, used, idx, cfg.LCVDepth)
				if cfg.ShuffleCandidates {
					heuristics.Shuffle(ordered, rng)
				}
			}

			top = &frame{slotID: chosenID, pattern: pat, candidates: ordered, idx: -1}
			stack = append(stack, top)
			if len(stack) > stats.MaxDepth {
				stats.MaxDepth = len(stack)
			}
		}

		top.idx++
		if top.idx >= len(top.candidates) {
			nogood[nogoodKey{slotID: top.slotID, pattern: top.pattern}] = true
			top.exhausted = true
			if !backtrackOnce(&stack, dm, g, used, assignments, &stats) {
				return fail(ExhaustedAllCandidates, map[string]any{"slot": top.slotID, "nogoods": len(nogood)}, stats, start)
			}
			continue
		}

		candidate := top.candidates[top.idx]
		stats.Steps++
		if used[candidate] {
			continue
		}

		record, ok := tryPlaceAndPropagate(g, dm, byID, top.slotID, candidate, used, assignments)
		if !ok {
			continue
		}

		top.record = record
		assignments[top.slotID] = candidate
		used[candidate] = true
	}
}

func fail(reason Reason, details map[string]any, stats RunStats, start time.Time) Result {
	stats.DurationMs = time.Since(start).Milliseconds()
	return Result{OK: false, Reason: reason, Details: details, Stats: stats}
}

func currentFrame(stack []*frame) *frame {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

func unassignedIDs(dm *domain.Manager, assignments map[slot.ID]string) []slot.ID {
	all := dm.AllIDs()
	out := make([]slot.ID, 0, len(all))
	for _, id := range all {
		if _, done := assignments[id]; !done {
			out = append(out, id)
		}
	}
	return out
}

func emptyDomainSlots(slots map[slot.ID]*slot.Slot, dm *domain.Manager, assignments map[slot.ID]string) []slot.ID {
	var out []slot.ID
	for id := range slots {
		if assignments != nil {
			if _, done := assignments[id]; done {
				continue
			}
		}
		if dm.Len(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}

func findZeroDomain(slots map[slot.ID]*slot.Slot, dm *domain.Manager, assignments map[slot.ID]string) (slot.ID, bool) {
	for id := range slots {
		if _, done := assignments[id]; done {
			continue
		}
		if dm.Len(id) == 0 {
			return id, true
		}
	}
	return "", false
}

// tryPlaceAndPropagate writes word into s's cells, enforces global
// uniqueness, and recomputes every crossing slot's domain, undoing
// everything and returning false if any unassigned crossing slot's domain
// empties. An assigned crossing slot recomputes to an empty domain (its own
// word is in used), so it is not counted.
func tryPlaceAndPropagate(g *grid.Grid, dm *domain.Manager, slots map[slot.ID]*slot.Slot, id slot.ID, word string, used domain.Used, assignments map[slot.ID]string) (*PlacementRecord, bool) {
	s := slots[id]
	snap := dm.SnapshotDomains()

	var changes []cellChange
	for i, cell := range s.Cells {
		existing := g.At(cell.Row, cell.Col)
		if existing.Kind == grid.Letter {
			if existing.Ch != rune(word[i]) {
				undoCells(g, changes)
				return nil, false
			}
			continue
		}
		if err := g.PlaceLetter(cell.Row, cell.Col, rune(word[i])); err != nil {
			undoCells(g, changes)
			return nil, false
		}
		changes = append(changes, cellChange{row: cell.Row, col: cell.Col})
	}

	used[word] = true
	dm.RemoveWordFromAllDomains(word)
	emptied, affected := dm.RecomputeAfterPlacement(g, s, used)

	dead := false
	for _, e := range emptied {
		if _, done := assignments[e]; !done {
			dead = true
			break
		}
	}
	if dead {
		undoCells(g, changes)
		dm.RestoreDomainsSnapshot(snap)
		delete(used, word)
		return nil, false
	}

	return &PlacementRecord{SlotID: id, Word: word, CellChanges: changes, Domains: snap, Affected: affected}, true
}

func undoCells(g *grid.Grid, changes []cellChange) {
	for _, ch := range changes {
		_ = g.ClearCell(ch.row, ch.col)
	}
}

// backtrackOnce undoes the most recent commit still on the stack so the
// search can retry with a different candidate, discarding any frames above
// it that never committed a word. It returns false only when the stack was
// already empty — never "stack length >= 0", which is vacuously true and
// masks a search that has genuinely run out of frames.
//
// A frame with a nil record is one whose candidates are exhausted (or not
// yet tried) and carries nothing to undo; it is simply dropped. The first
// frame found with a non-nil record has its placement undone but stays on
// the stack, so the main loop's next iteration advances it to its next
// candidate instead of re-selecting a slot.
func backtrackOnce(stack *[]*frame, dm *domain.Manager, g *grid.Grid, used domain.Used, assignments map[slot.ID]string, stats *RunStats) bool {
	for len(*stack) > 0 {
		top := (*stack)[len(*stack)-1]
		if top.record != nil {
			undoCells(g, top.record.CellChanges)
			dm.RestoreDomainsSnapshot(top.record.Domains)
			delete(used, top.record.Word)
			delete(assignments, top.record.SlotID)
			top.record = nil
			stats.Backtracks++
			return true
		}
		*stack = (*stack)[:len(*stack)-1]
	}
	return false
}
