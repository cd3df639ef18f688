package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the application logger. Level comes from configuration;
// development gets human-readable console output, everything else JSON.
func New(env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "development" {
		l = l.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	switch strings.ToLower(level) {
	case "debug":
		l = l.Level(zerolog.DebugLevel)
	case "warn":
		l = l.Level(zerolog.WarnLevel)
	case "error":
		l = l.Level(zerolog.ErrorLevel)
	default:
		l = l.Level(zerolog.InfoLevel)
	}
	return l
}
