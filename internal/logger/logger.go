package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root logger for the process.
//   - level: trace, debug, info, warn, error, fatal, panic (defaults to info)
//   - format: "pretty" for human-readable dev output, anything else is JSON
//
// Components derive child loggers from the returned instance with
// .With().Str("component", ...).
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "pretty" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "assess-backend").
		Logger()
}
