// Package logging configures the process wide zerolog logger and defines the
// typed errors the engine logs.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel overrides the default log level when set.
const EnvLevel = "CODEMODDER_LOG_LEVEL"

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger is the logger used by every package of the tool.
var Logger zerolog.Logger

func init() {
	level := zerolog.InfoLevel

	if envLevel := os.Getenv(EnvLevel); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	zerolog.SetGlobalLevel(level)
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Configure sets the global level and output format. Logs always go to stderr
// so they never mix with command output.
func Configure(level, format string) error {
	return ConfigureWriter(os.Stderr, level, format)
}

// ConfigureWriter is Configure with an explicit destination.
func ConfigureWriter(w io.Writer, level, format string) error {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}

	if level == "" {
		level = zerolog.InfoLevel.String()
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch format {
	case "", FormatConsole:
		Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	case FormatJSON:
		Logger = zerolog.New(w).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	log.Logger = Logger

	return nil
}
