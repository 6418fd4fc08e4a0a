package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/search"
)

var (
	searchLimit   int
	searchTimeout time.Duration
	searchJSON    bool
	searchDebug   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one query through the search engine and print grouped results",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (0 uses the configured default)")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 0, "per-query deadline (0 uses the engine default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the raw SearchResponse as pretty-printed JSON")
	searchCmd.Flags().BoolVar(&searchDebug, "debug", false, "also dump each group's primary candidate with its bucket and total score")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg, err := config.Default()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	db, err := dictdb.Open(dbPath, true)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	engine := search.NewEngine(db, cfg)

	resp, err := engine.Search(context.Background(), query, searchLimit, searchTimeout)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		raw, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("marshaling response: %w", err)
		}
		fmt.Println(string(pretty.Pretty(raw)))
		return nil
	}

	color.Greenln(fmt.Sprintf("mode=%s total_candidates=%d fell_back=%v", resp.Mode, resp.TotalCandidates, resp.FellBack))

	for i, g := range resp.Groups {
		fmt.Printf("%d. %s", i+1, g.DisplayHeadword)
		if len(g.AlternateHeadwords) > 0 {
			fmt.Printf(" (%v)", g.AlternateHeadwords)
		}
		fmt.Printf("  [%s]\n", g.Kind)

		e := g.Primary.Candidate.Entry
		fmt.Printf("   reading: %s  jlpt: %s  freq_rank: %v\n", e.ReadingHiragana, e.JLPTLevel, e.FrequencyRank)
		for _, s := range g.Primary.Candidate.Senses {
			fmt.Printf("   - %s\n", s.DefinitionEnglish)
		}

		if searchDebug {
			pp.Println(g.Primary)
		}
	}

	return nil
}
