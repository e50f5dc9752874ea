package domain

import (
	"sort"
	"testing"

	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/pool"
	"github.com/crosswarped/xwsolver/slot"
	"github.com/google/go-cmp/cmp"
)

func smallGridAndSlots(t *testing.T) (*grid.Grid, map[slot.ID]*slot.Slot) {
	t.Helper()
	g := grid.NewEmpty(3, 3)
	_, byID := slot.Build(g)
	return g, byID
}

func TestInitDomainsMatchesExhaustiveFilter(t *testing.T) {
	p := pool.Pool{3: {"CAT", "DOG", "COT", "ACT"}}
	idx := pattern.Build(p)
	g, byID := smallGridAndSlots(t)

	m := NewManager(idx, byID)
	used := Used{}
	m.InitDomains(g, used)

	for id, s := range byID {
		got := m.Domain(id)
		want := exhaustiveMatch(p[3], s, g)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("domain for %s mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func exhaustiveMatch(words []string, s *slot.Slot, g *grid.Grid) []string {
	pat := s.Pattern(g, '_')
	var out []string
	for _, w := range words {
		if len(w) != len(pat) {
			continue
		}
		match := true
		for i, r := range pat {
			if r != '_' && rune(w[i]) != r {
				match = false
				break
			}
		}
		if match {
			out = append(out, w)
		}
	}
	sort.Strings(out) // domains are kept in alphabetical order
	return out
}

func TestRecomputeAfterPlacementEmptiesNeighbor(t *testing.T) {
	p := pool.Pool{3: {"CAT"}}
	idx := pattern.Build(p)
	g, byID := smallGridAndSlots(t)
	m := NewManager(idx, byID)
	used := Used{}
	m.InitDomains(g, used)

	a0 := byID[slot.ID("A0-0")]
	if err := g.PlaceLetter(0, 0, 'X'); err != nil {
		t.Fatalf("PlaceLetter: %v", err)
	}

	emptied, affected := m.RecomputeAfterPlacement(g, a0, used)
	if len(affected) == 0 {
		t.Fatal("expected at least one affected slot")
	}
	foundEmptyDown := false
	for _, id := range emptied {
		if id == slot.ID("D0-0") {
			foundEmptyDown = true
		}
	}
	if !foundEmptyDown {
		t.Errorf("expected D0-0 to be emptied since CAT doesn't start with X, emptied=%v", emptied)
	}
}

func TestSnapshotRestoreRoundTrips(t *testing.T) {
	p := pool.Pool{3: {"CAT", "DOG"}}
	idx := pattern.Build(p)
	g, byID := smallGridAndSlots(t)
	m := NewManager(idx, byID)
	used := Used{}
	m.InitDomains(g, used)

	before := m.SnapshotDomains()
	m.SetDomain(slot.ID("A0-0"), []string{"ZZZ"})
	m.RestoreDomainsSnapshot(before)

	after := m.SnapshotDomains()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("restore did not produce an identical snapshot (-before +after):\n%s", diff)
	}
}

func TestRemoveWordFromAllDomains(t *testing.T) {
	p := pool.Pool{3: {"CAT", "DOG"}}
	idx := pattern.Build(p)
	g, byID := smallGridAndSlots(t)
	m := NewManager(idx, byID)
	used := Used{}
	m.InitDomains(g, used)

	affected := m.RemoveWordFromAllDomains("CAT")
	if len(affected) == 0 {
		t.Fatal("expected CAT to be removed from at least one domain")
	}
	for _, id := range affected {
		for _, w := range m.Domain(id) {
			if w == "CAT" {
				t.Errorf("CAT still present in domain %s after removal", id)
			}
		}
	}
}
