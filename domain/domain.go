// Package domain implements the Domain Manager: per-slot candidate lists,
// snapshot/restore, and forward-checking recomputation after a placement.
package domain

import (
	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/slot"
)

const unknownChar = '_'

// Used tracks words already assigned in the current partial solution.
type Used map[string]bool

func (u Used) filter(words []string) []string {
	if len(u) == 0 {
		return append([]string(nil), words...)
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !u[w] {
			out = append(out, w)
		}
	}
	return out
}

// Manager holds the live domain for every slot.
type Manager struct {
	idx    *pattern.Index
	slots  map[slot.ID]*slot.Slot
	values map[slot.ID][]string
}

// NewManager builds a Manager over the given slots and pattern index.
func NewManager(idx *pattern.Index, slots map[slot.ID]*slot.Slot) *Manager {
	return &Manager{idx: idx, slots: slots, values: make(map[slot.ID][]string, len(slots))}
}

// Domain returns the current candidate list for slotID.
func (m *Manager) Domain(id slot.ID) []string {
	return m.values[id]
}

// Len returns the number of candidates remaining for id.
func (m *Manager) Len(id slot.ID) int {
	return len(m.values[id])
}

// InitDomains computes every slot's domain from scratch against g and used.
func (m *Manager) InitDomains(g *grid.Grid, used Used) {
	for id, s := range m.slots {
		m.values[id] = m.computeDomain(g, s, used)
	}
}

// ComputeDomain recomputes a single slot's domain deterministically
// (alphabetical), without storing it.
func (m *Manager) ComputeDomain(g *grid.Grid, s *slot.Slot, used Used) []string {
	return m.computeDomain(g, s, used)
}

func (m *Manager) computeDomain(g *grid.Grid, s *slot.Slot, used Used) []string {
	pat := s.Pattern(g, unknownChar)
	candidates := pattern.CandidatesForPattern(m.idx, s.Length, pat, unknownChar, pattern.QueryOptions{})
	return used.filter(candidates)
}

// RecomputeAfterPlacement recomputes the domain of every slot crossing
// placed, returning the slots whose new domain is empty and the full set
// of slots recomputed.
func (m *Manager) RecomputeAfterPlacement(g *grid.Grid, placed *slot.Slot, used Used) (emptied, affected []slot.ID) {
	for _, cr := range placed.Crossings {
		neighbor := m.slots[cr.Other]
		if neighbor == nil {
			continue
		}
		m.values[neighbor.ID] = m.computeDomain(g, neighbor, used)
		affected = append(affected, neighbor.ID)
		if len(m.values[neighbor.ID]) == 0 {
			emptied = append(emptied, neighbor.ID)
		}
	}
	return emptied, affected
}

// Snapshot is a full copy of the domains map, sufficient to restore exactly.
type Snapshot map[slot.ID][]string

// SnapshotDomains returns a deep copy of the current domains.
func (m *Manager) SnapshotDomains() Snapshot {
	snap := make(Snapshot, len(m.values))
	for id, words := range m.values {
		snap[id] = append([]string(nil), words...)
	}
	return snap
}

// RestoreDomainsSnapshot replaces the current domains with snap exactly.
func (m *Manager) RestoreDomainsSnapshot(snap Snapshot) {
	m.values = make(map[slot.ID][]string, len(snap))
	for id, words := range snap {
		m.values[id] = append([]string(nil), words...)
	}
}

// RemoveWordFromAllDomains deletes word from every domain (used to enforce
// global uniqueness once a word is placed) and returns the slots affected.
func (m *Manager) RemoveWordFromAllDomains(word string) []slot.ID {
	var affected []slot.ID
	for id, words := range m.values {
		idx := -1
		for i, w := range words {
			if w == word {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		out := make([]string, 0, len(words)-1)
		out = append(out, words[:idx]...)
		out = append(out, words[idx+1:]...)
		m.values[id] = out
		affected = append(affected, id)
	}
	return affected
}

// InjectWords merges extra words into id's domain (deduplicated), used by
// the Hydrator to extend a starved domain. It does not re-filter against
// the grid pattern; callers must pre-filter.
func (m *Manager) InjectWords(id slot.ID, words []string) {
	existing := m.values[id]
	seen := make(map[string]bool, len(existing))
	for _, w := range existing {
		seen[w] = true
	}
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		existing = append(existing, w)
	}
	m.values[id] = existing
}

// SetDomain forcibly overwrites id's domain; used by tests.
func (m *Manager) SetDomain(id slot.ID, words []string) {
	m.values[id] = words
}

// AllIDs returns every slot ID managed, in no particular order.
func (m *Manager) AllIDs() []slot.ID {
	ids := make([]slot.ID, 0, len(m.slots))
	for id := range m.slots {
		ids = append(ids, id)
	}
	return ids
}
