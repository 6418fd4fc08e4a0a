package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/japaniel/kotobasearch/pkg/search"
)

func main() {
	search.SetLogger(zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger())

	if err := Execute(); err != nil {
		fatalf("%v", err)
		os.Exit(1)
	}
}
