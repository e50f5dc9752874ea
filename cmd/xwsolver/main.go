package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime/pprof"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/crosswarped/xwsolver/difficulty"
	"github.com/crosswarped/xwsolver/hydrate"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/pool"
	"github.com/crosswarped/xwsolver/provider"
	"github.com/crosswarped/xwsolver/solver"
	"github.com/crosswarped/xwsolver/xwio"
)

var validate = validator.New()

type generateOptions struct {
	Width           int    `validate:"gte=3"`
	MinLength       int    `validate:"gte=2"`
	Level           int    `validate:"gte=1,lte=7"`
	PoolPath        string `validate:"required"`
	DifficultyFile  string
	Timeout         time.Duration
	Profile         bool
	ProfileFile     string
	HydrateEndpoint string
	MaxWordLength   int
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := newRootCmd(log).Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(log *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "xwsolver",
		Short: "Generate and fill symmetric crossword grids",
	}
	root.AddCommand(newGenerateCmd(log))
	root.AddCommand(newPoolCmd(log))
	return root
}

func newGenerateCmd(log *slog.Logger) *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a symmetric layout and fill it from the word pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(opts); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			return runGenerate(cmd.Context(), log, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Width, "width", 15, "The width of the grid")
	flags.IntVar(&opts.MinLength, "min-length", 3, "The minimum word length")
	flags.IntVar(&opts.Level, "level", difficulty.DefaultLevel, "Difficulty level (1-7)")
	flags.StringVar(&opts.PoolPath, "pool", "pool.json", "Path to the word pool JSON file")
	flags.StringVar(&opts.DifficultyFile, "difficulty-file", "", "Optional YAML file overriding the compiled-in difficulty levels")
	flags.DurationVar(&opts.Timeout, "timeout", 1*time.Minute, "Wall-clock timeout for the solve")
	flags.BoolVar(&opts.Profile, "profile", false, "Profile the solve")
	flags.StringVar(&opts.ProfileFile, "profile-file", "cpu.pprof", "The file to write the CPU profile to")
	flags.StringVar(&opts.HydrateEndpoint, "hydrate-endpoint", "", "Word-lookup provider endpoint; enables on-demand domain hydration when set")
	flags.IntVar(&opts.MaxWordLength, "max-word-length", 21, "Maximum word length accepted into the pool during hydration")

	return cmd
}

func runGenerate(ctx context.Context, log *slog.Logger, opts generateOptions) error {
	if opts.Profile {
		f, err := os.Create(opts.ProfileFile)
		if err != nil {
			return fmt.Errorf("create profile file: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	store := pool.NewStore(opts.PoolPath)
	p, err := store.Load()
	if err != nil {
		return fmt.Errorf("load pool: %w", err)
	}
	log.Info("loaded word pool", "path", opts.PoolPath, "lengths", len(p))

	cfg, err := resolveDifficulty(opts.DifficultyFile, opts.Level)
	if err != nil {
		return err
	}
	cfg.TimeoutMs = int(opts.Timeout.Milliseconds())

	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	idx := pattern.Build(p)

	var hydrator *hydrate.Hydrator
	if opts.HydrateEndpoint != "" {
		client := provider.NewOnelookClient(opts.HydrateEndpoint)
		hydrator, err = hydrate.New(client, store, idx, opts.MaxWordLength, cfg.OnelookMax, 0, log)
		if err != nil {
			return fmt.Errorf("build hydrator: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	res, err := solver.Plan(ctx, opts.Width, opts.MinLength, idx, cfg, rng, solver.Options{RNG: rng, Logger: log, Hydrator: hydrator})
	if err != nil {
		return err
	}
	if !res.OK {
		log.Error("solve failed", "reason", res.Reason, "details", res.Details, "steps", res.Stats.Steps, "backtracks", res.Stats.Backtracks)
		return fmt.Errorf("solve failed: %s", res.Reason)
	}

	log.Info("solve succeeded", "steps", res.Stats.Steps, "backtracks", res.Stats.Backtracks, "maxDepth", res.Stats.MaxDepth, "durationMs", res.Stats.DurationMs)

	for _, row := range xwio.EncodeGrid(res.Grid, xwio.DefaultChars) {
		fmt.Println(row)
	}
	for _, a := range xwio.EncodeAssignments(res.Assignments) {
		fmt.Printf("%s %s\n", a.SlotID, a.Word)
	}
	return nil
}

func resolveDifficulty(path string, level int) (difficulty.Config, error) {
	if path == "" {
		return difficulty.Base, nil
	}
	return difficulty.Load(path, level)
}
