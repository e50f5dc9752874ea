package heuristics

import (
	"testing"

	"github.com/crosswarped/xwsolver/domain"
	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/pool"
	"github.com/crosswarped/xwsolver/slot"
)

func buildFixture(t *testing.T, p pool.Pool) (*grid.Grid, map[slot.ID]*slot.Slot, *domain.Manager) {
	t.Helper()
	g := grid.NewEmpty(3, 3)
	_, byID := slot.Build(g)
	idx := pattern.Build(p)
	m := domain.NewManager(idx, byID)
	m.InitDomains(g, domain.Used{})
	return g, byID, m
}

func TestSelectMRVPicksSmallestDomain(t *testing.T) {
	p := pool.Pool{3: {"CAT", "DOG", "COT", "ACT", "BAT", "RAT", "MAT", "SAT"}}
	g, byID, m := buildFixture(t, p)

	// Shrink one slot's domain to two words (CAT, COT) by fixing a letter
	// that only those two pool words start with.
	if err := g.PlaceLetter(0, 0, 'C'); err != nil {
		t.Fatalf("PlaceLetter: %v", err)
	}
	m.SetDomain(slot.ID("A0-0"), m.ComputeDomain(g, byID[slot.ID("A0-0")], domain.Used{}))

	var ids []slot.ID
	for id := range byID {
		ids = append(ids, id)
	}

	chosen, ok := SelectMRV(ids, byID, m, DefaultTieBreak, nil, false)
	if !ok {
		t.Fatal("expected a selectable slot")
	}
	if chosen != slot.ID("A0-0") {
		t.Errorf("expected A0-0 (smallest domain) to be chosen, got %s", chosen)
	}
}

func TestSelectMRVNoCandidatesReturnsFalse(t *testing.T) {
	_, _, m := buildFixture(t, pool.Pool{3: {"CAT"}})
	_, ok := SelectMRV(nil, nil, m, DefaultTieBreak, nil, false)
	if ok {
		t.Error("expected no selectable slot for an empty candidate list")
	}
}

func TestFrontierFallsBackToAllWhenEmpty(t *testing.T) {
	_, byID, m := buildFixture(t, pool.Pool{3: {"CAT"}})
	frontier := Frontier(byID, map[slot.ID]string{})
	if len(frontier) != 0 {
		t.Errorf("expected empty frontier with no assignments, got %v", frontier)
	}

	var ids []slot.ID
	for id := range byID {
		ids = append(ids, id)
	}
	if _, ok := SelectMRV(ids, byID, m, DefaultTieBreak, frontier, true); !ok {
		t.Error("expected SelectMRV to fall back to all candidates when the frontier is empty")
	}
}

func TestOrderCandidatesDepthZeroIsAlphabetical(t *testing.T) {
	p := pool.Pool{3: {"DOG", "CAT", "BAT"}}
	g, byID, m := buildFixture(t, p)
	s := byID[slot.ID("A0-0")]
	ordered := OrderCandidates(m.Domain(s.ID), s, g, byID, domain.Used{}, pattern.Build(p), 0)
	want := []string{"BAT", "CAT", "DOG"}
	for i, w := range want {
		if ordered[i] != w {
			t.Errorf("position %d: got %s, want %s", i, ordered[i], w)
		}
	}
}

func TestOrderCandidatesDepthOnePrefersLessConstraining(t *testing.T) {
	p := pool.Pool{3: {"CAT", "COT", "DOG", "BAT", "RAT", "MAT", "SAT", "HAT"}}
	idx := pattern.Build(p)
	g, byID, m := buildFixture(t, p)
	s := byID[slot.ID("A0-0")]
	ordered := OrderCandidates(m.Domain(s.ID), s, g, byID, domain.Used{}, idx, 1)
	if len(ordered) == 0 {
		t.Fatal("expected non-empty ordering")
	}
}
