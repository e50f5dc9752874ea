package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/crosswarped/xwsolver/pool"
)

func newPoolCmd(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Inspect and extend the word pool",
	}
	cmd.AddCommand(newPoolAddCmd(log))
	cmd.AddCommand(newPoolShowCmd(log))
	return cmd
}

func newPoolAddCmd(log *slog.Logger) *cobra.Command {
	var poolPath, wordsFile string
	var maxLen int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add words from a file (one per line) into the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := readWordsFile(wordsFile)
			if err != nil {
				return fmt.Errorf("read words file: %w", err)
			}

			store := pool.NewStore(poolPath)
			current, err := store.Load()
			if err != nil {
				return fmt.Errorf("load pool: %w", err)
			}

			merged, added, err := pool.AddWords(current, words, maxLen)
			if err != nil {
				return fmt.Errorf("add words: %w", err)
			}
			if err := store.SaveAtomic(merged); err != nil {
				return fmt.Errorf("persist pool: %w", err)
			}

			log.Info("pool updated", "path", poolPath, "added", added)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&poolPath, "pool", "pool.json", "Path to the word pool JSON file")
	flags.StringVar(&wordsFile, "words-file", "", "Path to a newline-delimited word list")
	flags.IntVar(&maxLen, "max-length", 21, "Maximum word length accepted into the pool")
	cmd.MarkFlagRequired("words-file")

	return cmd
}

func newPoolShowCmd(log *slog.Logger) *cobra.Command {
	var poolPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the pool's word counts by length",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := pool.NewStore(poolPath)
			p, err := store.Load()
			if err != nil {
				return fmt.Errorf("load pool: %w", err)
			}

			lengths := make([]int, 0, len(p))
			for l := range p {
				lengths = append(lengths, l)
			}
			sort.Ints(lengths)
			for _, l := range lengths {
				fmt.Printf("%d: %d words\n", l, len(p[l]))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&poolPath, "pool", "pool.json", "Path to the word pool JSON file")
	return cmd
}

func readWordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	return words, scanner.Err()
}
