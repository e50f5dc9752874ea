package hydrate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crosswarped/xwsolver/domain"
	"github.com/crosswarped/xwsolver/grid"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/pool"
	"github.com/crosswarped/xwsolver/slot"
)

type fakeProvider struct {
	words []string
	err   error
	calls int
}

func (f *fakeProvider) Fetch(ctx context.Context, pattern string, max int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.words, nil
}

func buildFixture(t *testing.T, p pool.Pool) (*grid.Grid, *slot.Slot, *domain.Manager, *pattern.Index) {
	t.Helper()
	g := grid.NewEmpty(3, 3)
	_, byID := slot.Build(g)
	idx := pattern.Build(p)
	m := domain.NewManager(idx, byID)
	m.InitDomains(g, domain.Used{})
	return g, byID[slot.ID("A0-0")], m, idx
}

func TestHydrateSlotInjectsNewWords(t *testing.T) {
	p := pool.Pool{3: {"CAT"}}
	g, s, m, idx := buildFixture(t, p)

	dir := t.TempDir()
	store := pool.NewStore(filepath.Join(dir, "pool.json"))
	require.NoError(t, store.SaveAtomic(p))

	fp := &fakeProvider{words: []string{"DOG", "BAT"}}
	h, err := New(fp, store, idx, 10, 25, 0, nil)
	require.NoError(t, err)

	changed := h.HydrateSlot(context.Background(), m, g, s, domain.Used{})
	require.True(t, changed)
	require.Equal(t, 1, fp.calls)

	domainWords := m.Domain(s.ID)
	require.Contains(t, domainWords, "DOG")
	require.Contains(t, domainWords, "BAT")

	persisted, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, persisted[3], "DOG")
	require.Contains(t, persisted[3], "BAT")
}

func TestHydrateSlotCachesAcrossCalls(t *testing.T) {
	p := pool.Pool{3: {"CAT"}}
	g, s, m, idx := buildFixture(t, p)
	dir := t.TempDir()
	store := pool.NewStore(filepath.Join(dir, "pool.json"))
	require.NoError(t, store.SaveAtomic(p))

	fp := &fakeProvider{words: []string{"DOG"}}
	h, err := New(fp, store, idx, 10, 25, 0, nil)
	require.NoError(t, err)

	require.True(t, h.HydrateSlot(context.Background(), m, g, s, domain.Used{}))
	require.True(t, h.HydrateSlot(context.Background(), m, g, s, domain.Used{}))
	require.Equal(t, 1, fp.calls, "second hydration should hit the cache, not the provider")
}

func TestHydrateSlotProviderFailureIsSoft(t *testing.T) {
	p := pool.Pool{3: {"CAT"}}
	g, s, m, idx := buildFixture(t, p)
	store := pool.NewStore(filepath.Join(t.TempDir(), "pool.json"))

	fp := &fakeProvider{err: errors.New("network down")}
	h, err := New(fp, store, idx, 10, 25, 0, nil)
	require.NoError(t, err)

	changed := h.HydrateSlot(context.Background(), m, g, s, domain.Used{})
	require.False(t, changed)
}

func TestHydrateSlotRecordsNogoodOnExhaustion(t *testing.T) {
	p := pool.Pool{3: {"CAT"}}
	g, s, m, idx := buildFixture(t, p)
	store := pool.NewStore(filepath.Join(t.TempDir(), "pool.json"))

	fp := &fakeProvider{words: []string{"CAT"}} // already used, filters to zero
	h, err := New(fp, store, idx, 10, 25, 0, nil)
	require.NoError(t, err)

	used := domain.Used{"CAT": true}
	changed := h.HydrateSlot(context.Background(), m, g, s, used)
	require.False(t, changed)

	key := cacheKey{length: s.Length, pattern: PatternForSlot(g, s)}
	require.True(t, h.nogood[key])

	changed = h.HydrateSlot(context.Background(), m, g, s, used)
	require.False(t, changed)
	require.Equal(t, 1, fp.calls, "nogood should prevent a second fetch")
}

func TestShouldHydrate(t *testing.T) {
	require.True(t, ShouldHydrate(2, 5))
	require.False(t, ShouldHydrate(5, 5))
}

func TestPatternForSlotUsesWildcard(t *testing.T) {
	g := grid.NewEmpty(3, 3)
	require.NoError(t, g.PlaceLetter(0, 0, 'C'))
	_, byID := slot.Build(g)
	s := byID[slot.ID("A0-0")]
	require.Equal(t, "C??", PatternForSlot(g, s))
}

