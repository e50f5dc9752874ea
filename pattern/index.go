// Package pattern implements the Pattern Index: a positional inverted
// index over a word Pool, answering pattern queries with a
// smallest-bucket-first constraint intersection.
//
// The bitset intersection approach uses a bitset over a word universe,
// ANDed per position/character mask, rebuilt from scratch per pool
// generation rather than folded into a recursive line-matching algebra.
package pattern

import (
	"math/bits"
	"sort"

	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/pool"
)

// Order controls the result ordering of CandidatesForPattern.
type Order int

const (
	OrderAlpha Order = iota
	OrderAsIs
)

const numChars = 37 // A-Z (26) + 0-9 (10) + underscore (1)

func charIndex(r rune) int {
	switch {
	case r >= 'A' && r <= 'Z':
		return int(r - 'A')
	case r >= '0' && r <= '9':
		return 26 + int(r-'0')
	case r == '_':
		return 36
	default:
		return -1
	}
}

const wordsPerUint64 = 64

// lengthIndex holds the per-length data: the alphabetically sorted word
// list and, for each (position, character), a bitset over that list
// marking which words have that character at that position.
type lengthIndex struct {
	words []string             // alphabetically sorted
	order []string             // original pool order, for OrderAsIs
	masks [][numChars][]uint64 // masks[pos][charIdx] -> bitset over words
}

// Index is the built Pattern Index for a pool generation.
type Index struct {
	byLen map[int]*lengthIndex
}

// Build constructs an Index from p, keeping only words matching the grid
// alphabet regex.
func Build(p pool.Pool) *Index {
	idx := &Index{byLen: make(map[int]*lengthIndex)}
	for length, words := range p {
		li := &lengthIndex{}
		seen := make(map[string]bool, len(words))
		for _, w := range words {
			if len(w) != length || !pool.WordPattern.MatchString(w) {
				continue
			}
			if seen[w] {
				continue
			}
			seen[w] = true
			li.order = append(li.order, w)
		}
		li.words = append([]string(nil), li.order...)
		sort.Strings(li.words)

		nBlocks := (len(li.words) + wordsPerUint64 - 1) / wordsPerUint64
		li.masks = make([][numChars][]uint64, length)
		for pos := 0; pos < length; pos++ {
			for c := 0; c < numChars; c++ {
				li.masks[pos][c] = make([]uint64, nBlocks)
			}
		}
		for i, w := range li.words {
			block := i / wordsPerUint64
			bit := uint(i % wordsPerUint64)
			for pos, r := range w {
				ci := charIndex(r)
				if ci < 0 {
					continue
				}
				li.masks[pos][ci][block] |= 1 << bit
			}
		}
		idx.byLen[length] = li
	}
	return idx
}

// ByLen returns the alphabetically sorted words of the given length.
func (idx *Index) ByLen(length int) []string {
	li := idx.byLen[length]
	if li == nil {
		return nil
	}
	return li.words
}

// QueryOptions configures CandidatesForPattern.
type QueryOptions struct {
	Order Order
	// Limit caps the number of returned words. A nil Limit means
	// unlimited; a Limit of 0 yields no results.
	Limit *int
}

type constraint struct {
	pos int
	ch  rune
}

// CandidatesForPattern returns the words of the given length consistent
// with pattern, where unknownChar marks wildcard positions. Invalid
// pattern characters or a length mismatch yield an empty (not error)
// result.
func CandidatesForPattern(idx *Index, length int, pattern string, unknownChar rune, opts QueryOptions) []string {
	if opts.Limit != nil && *opts.Limit == 0 {
		return nil
	}
	if len([]rune(pattern)) != length {
		return nil
	}
	li := idx.byLen[length]
	if li == nil {
		return nil
	}

	var constraints []constraint
	for pos, r := range []rune(pattern) {
		if r == unknownChar {
			continue
		}
		if charIndex(r) < 0 {
			return nil
		}
		constraints = append(constraints, constraint{pos: pos, ch: r})
	}

	if len(constraints) == 0 {
		return limitWords(li.words, opts)
	}

	// Smallest-bucket-first: sort ascending by popcount so the first
	// intersection prunes the most, short-circuiting on empty.
	sort.Slice(constraints, func(i, j int) bool {
		return popcount(li.masks[constraints[i].pos][charIndex(constraints[i].ch)]) <
			popcount(li.masks[constraints[j].pos][charIndex(constraints[j].ch)])
	})

	acc := append([]uint64(nil), li.masks[constraints[0].pos][charIndex(constraints[0].ch)]...)
	for _, c := range constraints[1:] {
		mask := li.masks[c.pos][charIndex(c.ch)]
		empty := true
		for i := range acc {
			acc[i] &= mask[i]
			if acc[i] != 0 {
				empty = false
			}
		}
		if empty {
			return nil
		}
	}

	var out []string
	if opts.Order == OrderAsIs {
		member := make(map[string]bool)
		for i, w := range li.words {
			if bitSet(acc, i) {
				member[w] = true
			}
		}
		for _, w := range li.order {
			if member[w] {
				out = append(out, w)
			}
		}
	} else {
		for i, w := range li.words {
			if bitSet(acc, i) {
				out = append(out, w)
			}
		}
	}
	return limitWords(out, opts)
}

func limitWords(words []string, opts QueryOptions) []string {
	if opts.Limit == nil || *opts.Limit >= len(words) {
		return words
	}
	if *opts.Limit <= 0 {
		return nil
	}
	return words[:*opts.Limit]
}

func popcount(mask []uint64) int {
	n := 0
	for _, w := range mask {
		n += bits.OnesCount64(w)
	}
	return n
}

func bitSet(mask []uint64, i int) bool {
	block := i / wordsPerUint64
	bit := uint(i % wordsPerUint64)
	return mask[block]&(1<<bit) != 0
}

// ValidateAlphabet reports whether every character of s is in the grid
// alphabet; used by callers that must reject malformed patterns early.
func ValidateAlphabet(s string) bool {
	for _, r := range s {
		if !grid.InAlphabet(r) {
			return false
		}
	}
	return true
}
