// Package logging builds zerolog loggers from configuration.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/config"
)

// New constructs a logger from the logging configuration.
// Format "console" gives human-readable output for CLIs; anything else
// emits JSON lines.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	if cfg.Format == "console" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
