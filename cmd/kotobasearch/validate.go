package main

import (
	"context"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/search"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the database at --db has the required tables and a consistent FTS index",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
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
	if err := engine.ValidateDatabaseIntegrity(context.Background()); err != nil {
		return err
	}

	color.Greenln(fmt.Sprintf("%s is valid", dbPath))
	return nil
}
