package search

import "github.com/rs/zerolog"

// logger is the package-level logger, following the same
// SetLogger/GetLogger seam the corpus uses for its transliteration
// packages: callers wire a configured zerolog.Logger in at startup;
// absent that, log calls are no-ops.
var logger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	logger = l
}

func GetLogger() zerolog.Logger {
	return logger
}
