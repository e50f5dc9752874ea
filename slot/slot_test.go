package slot

import (
	"testing"

	"github.com/crosswarped/xwsolver/grid"
)

func TestBuildSlotsSimpleCross(t *testing.T) {
	g := grid.NewEmpty(3, 3)
	slots, byID := Build(g)

	if len(slots) != 6 {
		t.Fatalf("expected 6 slots (3 across + 3 down), got %d", len(slots))
	}

	a0 := byID[ID("A0-0")]
	if a0 == nil {
		t.Fatal("expected slot A0-0 to exist")
	}
	if a0.Length != 3 {
		t.Errorf("expected length 3, got %d", a0.Length)
	}
	if len(a0.Crossings) != 3 {
		t.Fatalf("expected 3 crossings on row 0, got %d", len(a0.Crossings))
	}
}

func TestCrossingsAreSymmetric(t *testing.T) {
	g := grid.NewEmpty(5, 3)
	if err := g.PlaceBlockSymmetric(0, 0, false); err != nil {
		t.Skip("layout not valid for this grid size; adjust test")
	}
	_, byID := Build(g)

	for _, s := range byID {
		for _, cr := range s.Crossings {
			other, ok := byID[cr.Other]
			if !ok {
				t.Fatalf("crossing references unknown slot %s", cr.Other)
			}
			found := false
			for _, back := range other.Crossings {
				if back.Other == s.ID && back.AtThis == cr.AtOther && back.AtOther == cr.AtThis {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("crossing from %s to %s at (%d,%d) has no symmetric counterpart", s.ID, cr.Other, cr.AtThis, cr.AtOther)
			}
		}
	}
}

func TestShortRunsExcluded(t *testing.T) {
	g := grid.NewEmpty(3, 4)
	slots, _ := Build(g)
	if len(slots) != 0 {
		t.Fatalf("expected no slots when minEntryLen exceeds grid size, got %d", len(slots))
	}
}

func TestCellBelongsToExactlyOneSlotPerDirection(t *testing.T) {
	g := grid.NewEmpty(5, 3)
	slots, _ := Build(g)

	acrossOwner := make(map[Coord]ID)
	downOwner := make(map[Coord]ID)
	for _, s := range slots {
		for _, cell := range s.Cells {
			if s.Dir.String() == "Across" {
				if existing, ok := acrossOwner[cell]; ok {
					t.Fatalf("cell %v claimed by both %s and %s across slots", cell, existing, s.ID)
				}
				acrossOwner[cell] = s.ID
			} else {
				if existing, ok := downOwner[cell]; ok {
					t.Fatalf("cell %v claimed by both %s and %s down slots", cell, existing, s.ID)
				}
				downOwner[cell] = s.ID
			}
		}
	}
}

func TestPattern(t *testing.T) {
	g := grid.NewEmpty(3, 3)
	if err := g.PlaceLetter(0, 1, 'A'); err != nil {
		t.Fatalf("PlaceLetter: %v", err)
	}
	slots, byID := Build(g)
	_ = slots
	a0 := byID[ID("A0-0")]
	got := a0.Pattern(g, '_')
	if got != "_A_" {
		t.Errorf("Pattern() = %q, want %q", got, "_A_")
	}
}
