// Package logging sets up the zerolog logger used across all components.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/stevedore/internal/config"
)

// Setup builds the process-wide logger from the logging configuration.
// The returned logger is passed by value into every component constructor.
func Setup(cfg *config.LoggingConfig) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(consoleWriter).
		With().
		Timestamp().
		Str("service", "stevedore").
		Logger()
}
