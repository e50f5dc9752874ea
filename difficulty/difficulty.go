// Package difficulty loads and merges the difficulty configuration that
// parameterizes the Layout Generator and Backtracker.
package difficulty

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crosswarped/xwsolver/heuristics"
	"github.com/crosswarped/xwsolver/layout"
)

// DefaultLevel is used when a requested level key is absent from the
// loaded file.
const DefaultLevel = 3

// Config holds every difficulty-tunable field.
type Config struct {
	BlockBudget       layout.BlockBudget    `yaml:"blockBudget"`
	TimeoutMs         int                   `yaml:"timeoutMs"`
	MaxBacktracks     int                   `yaml:"maxBacktracks"`
	LCVDepth          int                   `yaml:"lcvDepth"`
	TieBreak          []heuristics.TieBreak `yaml:"tieBreak"`
	ShuffleCandidates bool                  `yaml:"shuffleCandidates"`
	HydrateIfBelow    int                   `yaml:"hydrateIfBelow"`
	OnelookMax        int                   `yaml:"onelookMax"`
	AllowRescueBlocks bool                  `yaml:"allowRescueBlocks"`
	MaxRescuePairs    int                   `yaml:"maxRescuePairs"`
}

// Base is the compiled-in default, used as the merge floor for every level.
var Base = Config{
	BlockBudget:       layout.BlockBudget{Min: 18, Max: 22},
	TimeoutMs:         5000,
	MaxBacktracks:     20000,
	LCVDepth:          1,
	TieBreak:          heuristics.DefaultTieBreak,
	ShuffleCandidates: false,
	HydrateIfBelow:    3,
	OnelookMax:        25,
	AllowRescueBlocks: true,
	MaxRescuePairs:    2,
}

// FileConfig is the on-disk shape: a base override plus a map of
// level -> override.
type FileConfig struct {
	Base   *Override         `yaml:"base"`
	Levels map[int]*Override `yaml:"levels"`
}

// Override carries pointer/nil-slice fields so "absent" and "zero value"
// are distinguishable during merge.
type Override struct {
	BlockBudget       *layout.BlockBudget   `yaml:"blockBudget"`
	TimeoutMs         *int                  `yaml:"timeoutMs"`
	MaxBacktracks     *int                  `yaml:"maxBacktracks"`
	LCVDepth          *int                  `yaml:"lcvDepth"`
	TieBreak          []heuristics.TieBreak `yaml:"tieBreak"`
	ShuffleCandidates *bool                 `yaml:"shuffleCandidates"`
	HydrateIfBelow    *int                  `yaml:"hydrateIfBelow"`
	OnelookMax        *int                  `yaml:"onelookMax"`
	AllowRescueBlocks *bool                 `yaml:"allowRescueBlocks"`
	MaxRescuePairs    *int                  `yaml:"maxRescuePairs"`
}

func applyOverride(c Config, o *Override) Config {
	if o == nil {
		return c
	}
	if o.BlockBudget != nil {
		c.BlockBudget = *o.BlockBudget
	}
	if o.TimeoutMs != nil {
		c.TimeoutMs = *o.TimeoutMs
	}
	if o.MaxBacktracks != nil {
		c.MaxBacktracks = *o.MaxBacktracks
	}
	if o.LCVDepth != nil {
		c.LCVDepth = *o.LCVDepth
	}
	if len(o.TieBreak) > 0 {
		c.TieBreak = o.TieBreak
	}
	if o.ShuffleCandidates != nil {
		c.ShuffleCandidates = *o.ShuffleCandidates
	}
	if o.HydrateIfBelow != nil {
		c.HydrateIfBelow = *o.HydrateIfBelow
	}
	if o.OnelookMax != nil {
		c.OnelookMax = *o.OnelookMax
	}
	if o.AllowRescueBlocks != nil {
		c.AllowRescueBlocks = *o.AllowRescueBlocks
	}
	if o.MaxRescuePairs != nil {
		c.MaxRescuePairs = *o.MaxRescuePairs
	}
	return c
}

// Load reads a YAML difficulty file and resolves the configuration for
// level, merging Base -> file.base -> file.levels[level] in that order.
// A missing level key falls back to DefaultLevel rather than the nearest
// level below it.
func Load(path string, level int) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("difficulty: read %s: %w", path, err)
	}
	var f FileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("difficulty: parse %s: %w", path, err)
	}
	return Resolve(f, level), nil
}

// Resolve merges a decoded file against Base for the given level.
func Resolve(f FileConfig, level int) Config {
	c := applyOverride(Base, f.Base)
	if lvl, ok := f.Levels[level]; ok {
		return applyOverride(c, lvl)
	}
	if lvl, ok := f.Levels[DefaultLevel]; ok {
		return applyOverride(c, lvl)
	}
	return c
}
