/*
Package logging builds the application's structured zerolog logger.

Development gets human-readable console output; everything else gets
JSON lines suitable for log aggregation.
*/
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/warp/stock-engine/config"
)

// New creates a structured logger from the application config. The
// zerolog global logger is redirected so libraries using it stay
// consistent with ours.
func New(cfg *config.Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.App.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zl := zerolog.New(w).
		Level(parseLevel(cfg.Log.Level)).
		With().
		Timestamp().
		Str("app", cfg.App.Name).
		Logger()

	log.Logger = zl
	return zl
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
