// Package xwio implements the wire format for grids and slot assignments:
// an array of N strings for the grid, and an array of {slotId, word} pairs
// for assignments.
package xwio

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/slot"
)

// Chars configures the block/unknown characters used when rendering a
// grid to strings. Defaults are '.' and '_'.
type Chars struct {
	Block   rune
	Unknown rune
}

// DefaultChars is the default block/unknown rendering.
var DefaultChars = Chars{Block: '.', Unknown: '_'}

// Assignment pairs a slot ID with its placed word.
type Assignment struct {
	SlotID slot.ID `json:"slotId"`
	Word   string  `json:"word"`
}

// EncodeGrid renders g as an array of N strings using chars.
func EncodeGrid(g *grid.Grid, chars Chars) []string {
	n := g.Size()
	rows := make([]string, n)
	for r := 0; r < n; r++ {
		row := make([]rune, n)
		for c := 0; c < n; c++ {
			cell := g.At(r, c)
			switch cell.Kind {
			case grid.Block:
				row[c] = chars.Block
			case grid.Letter:
				row[c] = cell.Ch
			default:
				row[c] = chars.Unknown
			}
		}
		rows[r] = string(row)
	}
	return rows
}

// DecodeGrid parses rows (as produced by EncodeGrid) back into a Grid.
// minEntryLen is the minimum slot length the resulting Grid will enforce.
func DecodeGrid(rows []string, chars Chars, minEntryLen int) (*grid.Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("xwio: empty grid")
	}
	for _, row := range rows {
		if len([]rune(row)) != n {
			return nil, fmt.Errorf("xwio: grid is not square: want %d columns, got %d", n, len([]rune(row)))
		}
	}

	g := grid.NewEmpty(n, minEntryLen)
	for r, row := range rows {
		for c, ch := range []rune(row) {
			switch {
			case ch == chars.Block:
				if err := g.PlaceBlockSymmetric(r, c, true); err != nil {
					return nil, fmt.Errorf("xwio: block at (%d,%d): %w", r, c, err)
				}
			case ch == chars.Unknown:
				// already empty
			default:
				if err := g.PlaceLetter(r, c, ch); err != nil {
					return nil, fmt.Errorf("xwio: letter at (%d,%d): %w", r, c, err)
				}
			}
		}
	}
	return g, nil
}

// EncodeAssignments converts an in-memory assignment map into the wire
// array form, sorted by slot ID for a stable encoding.
func EncodeAssignments(assignments map[slot.ID]string) []Assignment {
	out := make([]Assignment, 0, len(assignments))
	for id, word := range assignments {
		out = append(out, Assignment{SlotID: id, Word: word})
	}
	sortAssignments(out)
	return out
}

// DecodeAssignments converts the wire array form back into a map.
func DecodeAssignments(assignments []Assignment) map[slot.ID]string {
	out := make(map[slot.ID]string, len(assignments))
	for _, a := range assignments {
		out[a.SlotID] = a.Word
	}
	return out
}

func sortAssignments(a []Assignment) {
	sort.Slice(a, func(i, j int) bool { return a[i].SlotID < a[j].SlotID })
}

// MarshalAssignments is a convenience wrapper producing the JSON array
// form directly.
func MarshalAssignments(assignments map[slot.ID]string) ([]byte, error) {
	return json.Marshal(EncodeAssignments(assignments))
}

// UnmarshalAssignments is the inverse of MarshalAssignments.
func UnmarshalAssignments(data []byte) (map[slot.ID]string, error) {
	var arr []Assignment
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("xwio: unmarshal assignments: %w", err)
	}
	return DecodeAssignments(arr), nil
}
