package main

import (
	"context"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/dictionary"
)

var jmdictPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a jmdict-simplified JSON file into the database at --db",
	Long: `seed is a builder-adjacent dev helper, not part of the query
pipeline: it parses a jmdict-simplified export and writes a
dictionary_entries row for every entry that carries a kana reading, plus a
word_senses row for each of its senses that has an English gloss.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&jmdictPath, "jmdict", "", "path to a jmdict-simplified JSON file (required)")
	if err := seedCmd.MarkFlagRequired("jmdict"); err != nil {
		fatalf("failed to mark --jmdict required: %v", err)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	entries, err := dictionary.LoadJMdictSimplified(jmdictPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", jmdictPath, err)
	}
	fmt.Printf("loaded %d entries from %s\n", len(entries), jmdictPath)

	db, err := dictdb.Open(dbPath, false)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	n, err := dictionary.Seed(context.Background(), db, entries)
	if err != nil {
		return fmt.Errorf("seeding %s: %w", dbPath, err)
	}

	color.Greenln(fmt.Sprintf("seeded %d entries into %s", n, dbPath))
	return nil
}
