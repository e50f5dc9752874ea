// Package hydrate implements the Hydrator: on-demand domain expansion via
// an external word-lookup provider, backed by a bounded in-memory cache
// and a nogood set that avoids repeat fetches within a run.
package hydrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/crosswarped/xwsolver/domain"
	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/pool"
	"github.com/crosswarped/xwsolver/provider"
	"github.com/crosswarped/xwsolver/slot"
)

const unknownChar = '_'
const defaultCacheCapacity = 4096

type cacheKey struct {
	length  int
	pattern string
}

// String renders the key in the form ristretto's Cache requires (a
// scalar Key type), rather than the struct used elsewhere for lookups.
func (k cacheKey) String() string {
	return fmt.Sprintf("%d:%s", k.length, k.pattern)
}

// Hydrator extends starved slot domains by querying provider, merging any
// new words into the pool store. The pattern index is read to skip words
// it already holds; it is not updated.
type Hydrator struct {
	Provider   provider.Client
	Store      *pool.Store
	Index      *pattern.Index
	MaxLen     int
	OnelookMax int

	cache  *ristretto.Cache[string, []string]
	nogood map[cacheKey]bool
	log    *slog.Logger
}

// New builds a Hydrator with a bounded cache of the given capacity (0 uses
// a sane default).
func New(p provider.Client, store *pool.Store, idx *pattern.Index, maxLen, onelookMax, capacity int, log *slog.Logger) (*Hydrator, error) {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if log == nil {
		log = slog.Default()
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []string]{
		NumCounters: int64(capacity * 10),
		MaxCost:     int64(capacity),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Hydrator{
		Provider:   p,
		Store:      store,
		Index:      idx,
		MaxLen:     maxLen,
		OnelookMax: onelookMax,
		cache:      cache,
		nogood:     make(map[cacheKey]bool),
		log:        log,
	}, nil
}

// ShouldHydrate reports whether domainSize warrants a hydration attempt.
func ShouldHydrate(domainSize, hydrateIfBelow int) bool {
	return domainSize < hydrateIfBelow
}

// PatternForSlot converts s's current grid pattern into the provider's
// wildcard convention.
func PatternForSlot(g *grid.Grid, s *slot.Slot) string {
	return provider.ToWildcardPattern(s.Pattern(g, unknownChar), unknownChar)
}

// HydrateSlot attempts to extend s's domain in dm. It returns true if at
// least one fetched or cached word that matches s's current pattern and is
// not in used was passed to the domain; words already in the domain are not
// added twice. A (length, pattern) pair recorded as nogood is skipped
// without calling the provider, for every slot with that pattern. Provider
// failures are logged and treated as zero new words (soft failure).
func (h *Hydrator) HydrateSlot(ctx context.Context, dm *domain.Manager, g *grid.Grid, s *slot.Slot, used domain.Used) bool {
	pat := PatternForSlot(g, s)
	key := cacheKey{length: s.Length, pattern: pat}

	if h.nogood[key] {
		return false
	}

	words, ok := h.cache.Get(key.String())
	if !ok {
		fetched, err := h.Provider.Fetch(ctx, pat, h.OnelookMax)
		if err != nil {
			h.log.Warn("hydrate: provider fetch failed", "slot", s.ID, "pattern", pat, "error", err)
			h.cache.Set(key.String(), nil, 1)
			h.nogood[key] = true
			return false
		}
		words = h.filterAndMerge(fetched, s.Length)
		h.cache.Set(key.String(), words, 1)
		h.cache.Wait()
	}

	current := s.Pattern(g, unknownChar)
	fresh := make([]string, 0, len(words))
	for _, w := range words {
		if used[w] || !matchesPattern(w, current, unknownChar) {
			continue
		}
		fresh = append(fresh, w)
	}
	if len(fresh) == 0 {
		h.nogood[key] = true
		return false
	}

	dm.InjectWords(s.ID, fresh)
	return true
}

// matchesPattern reports whether word agrees with pattern at every position
// that isn't the wildcard rune, so a provider result can't be injected
// against fixed-letter crossings it doesn't actually satisfy.
func matchesPattern(word, pattern string, wildcard rune) bool {
	if len(word) != len(pattern) {
		return false
	}
	for i, r := range pattern {
		if r != wildcard && rune(word[i]) != r {
			return false
		}
	}
	return true
}

// filterAndMerge keeps only words of the right length and alphabet that
// the static index doesn't already know about, persists them into the
// pool store for future runs, and returns the accepted subset for
// immediate injection into the live domain.
func (h *Hydrator) filterAndMerge(words []string, length int) []string {
	known := make(map[string]bool)
	if h.Index != nil {
		for _, w := range h.Index.ByLen(length) {
			known[w] = true
		}
	}

	var accepted []string
	for _, w := range words {
		if len(w) != length {
			continue
		}
		if !pattern.ValidateAlphabet(w) {
			continue
		}
		if known[w] {
			continue
		}
		accepted = append(accepted, w)
	}
	if len(accepted) == 0 {
		return nil
	}

	if h.Store != nil {
		current, err := h.Store.Load()
		if err != nil {
			h.log.Warn("hydrate: pool load failed", "error", err)
			current = pool.Pool{}
		}
		merged, added, err := pool.AddWords(current, accepted, h.MaxLen)
		if err != nil {
			h.log.Warn("hydrate: pool merge rejected words", "error", err)
		} else if err := h.Store.SaveAtomic(merged); err != nil {
			h.log.Warn("hydrate: pool persist failed", "error", err)
		} else {
			h.log.Info("hydrate: merged new words into pool", "added", added)
		}
	}

	return accepted
}
