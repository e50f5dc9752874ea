// Package slot extracts Across/Down slots and their crossings from a grid.
package slot

import (
	"fmt"
	"sort"

	"github.com/crosswarped/xwsolver/grid"
)

// ID is a stable slot identifier, e.g. "A0-0" or "D2-3".
type ID string

func makeID(dir grid.Direction, row, col int) ID {
	prefix := "A"
	if dir == grid.Down {
		prefix = "D"
	}
	return ID(fmt.Sprintf("%s%d-%d", prefix, row, col))
}

// Coord is a (row, col) cell coordinate.
type Coord struct{ Row, Col int }

// Crossing records that position AtThis of this slot shares a cell with
// position AtOther of the slot identified by Other.
type Crossing struct {
	Other   ID
	AtThis  int
	AtOther int
}

// Slot is a maximal run of non-block cells in one direction.
type Slot struct {
	ID        ID
	Dir       grid.Direction
	Row, Col  int // start coordinate
	Length    int
	Cells     []Coord
	Crossings []Crossing
}

// Pattern returns the slot's current pattern against g: the fixed letters
// already placed, and unknownChar everywhere else.
func (s *Slot) Pattern(g *grid.Grid, unknownChar rune) string {
	out := make([]rune, s.Length)
	for i, cell := range s.Cells {
		c := g.At(cell.Row, cell.Col)
		if c.Kind == grid.Letter {
			out[i] = c.Ch
		} else {
			out[i] = unknownChar
		}
	}
	return string(out)
}

// Build scans g and returns every Across/Down slot with length at least
// g.MinEntryLen(), plus an index from ID to slot, and their crossings.
func Build(g *grid.Grid) ([]*Slot, map[ID]*Slot) {
	byID := make(map[ID]*Slot)
	var slots []*Slot

	for _, run := range g.HorizontalRuns() {
		if run.Length < g.MinEntryLen() {
			continue
		}
		s := &Slot{
			ID:     makeID(grid.Across, run.Row, run.Col),
			Dir:    grid.Across,
			Row:    run.Row,
			Col:    run.Col,
			Length: run.Length,
		}
		for i := 0; i < run.Length; i++ {
			s.Cells = append(s.Cells, Coord{Row: run.Row, Col: run.Col + i})
		}
		slots = append(slots, s)
		byID[s.ID] = s
	}

	for _, run := range g.VerticalRuns() {
		if run.Length < g.MinEntryLen() {
			continue
		}
		s := &Slot{
			ID:     makeID(grid.Down, run.Row, run.Col),
			Dir:    grid.Down,
			Row:    run.Row,
			Col:    run.Col,
			Length: run.Length,
		}
		for i := 0; i < run.Length; i++ {
			s.Cells = append(s.Cells, Coord{Row: run.Row + i, Col: run.Col})
		}
		slots = append(slots, s)
		byID[s.ID] = s
	}

	// Index cell -> (across slot, position) and cell -> (down slot, position)
	// so crossings can be computed by a single pass rather than an O(n^2)
	// cell comparison.
	type occupant struct {
		id  ID
		pos int
	}
	acrossAt := make(map[Coord]occupant)
	downAt := make(map[Coord]occupant)
	for _, s := range slots {
		for i, cell := range s.Cells {
			if s.Dir == grid.Across {
				acrossAt[cell] = occupant{id: s.ID, pos: i}
			} else {
				downAt[cell] = occupant{id: s.ID, pos: i}
			}
		}
	}

	for cell, a := range acrossAt {
		d, ok := downAt[cell]
		if !ok {
			continue
		}
		acrossSlot := byID[a.id]
		downSlot := byID[d.id]
		acrossSlot.Crossings = append(acrossSlot.Crossings, Crossing{Other: d.id, AtThis: a.pos, AtOther: d.pos})
		downSlot.Crossings = append(downSlot.Crossings, Crossing{Other: a.id, AtThis: d.pos, AtOther: a.pos})
	}

	// Deterministic crossing order makes heuristics and tests reproducible.
	for _, s := range slots {
		sort.Slice(s.Crossings, func(i, j int) bool {
			return s.Crossings[i].AtThis < s.Crossings[j].AtThis
		})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })

	return slots, byID
}
