package shared

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger configures zerolog for the CLI. JSON mode emits structured
// output suitable for log shippers; the default is a pretty console
// writer on stderr.
func Logger(debug, json bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if json {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		return zerolog.New(os.Stderr).
			Level(level).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
