package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Production writes JSON lines; every other
// environment gets the human-readable console writer. An empty or unknown
// level falls back to debug outside production and info inside it.
func New(environment, level string) zerolog.Logger {
	var output io.Writer = os.Stdout
	if environment != "production" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", "stockify-api").
		Str("env", environment).
		Logger()

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.DebugLevel
		if environment == "production" {
			parsed = zerolog.InfoLevel
		}
	}
	zerolog.SetGlobalLevel(parsed)

	return logger
}
