// Package main wires the kotobasearch CLI: search, validate, and seed
// subcommands over pkg/search's Engine, following the same
// cobra-plus-package-level-vars shape as ragent's cmd package.
package main

import (
	"log"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "kotobasearch",
	Short: "Bilingual Japanese lexical search over a local SQLite corpus",
	Long: `kotobasearch is a CLI over a bilingual (Japanese/English/Chinese)
lexical search engine: kanji, kana, and romaji queries in, ranked and
grouped dictionary entries out, all served from a local SQLite database.`,
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	defaultDB := filepath.Join(xdg.DataHome, "kotobasearch", "dictionary.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to the SQLite dictionary database")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(seedCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func fatalf(format string, args ...any) {
	log.Fatalf(format, args...)
}
