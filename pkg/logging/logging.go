package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tvcutsem/proxy-handlers/pkg/config"
)

// New builds a logger writing to w according to cfg. Unknown levels fall
// back to info; cfg is expected to have been validated.
func New(cfg config.Logging, w io.Writer) zerolog.Logger {
	out := w
	if strings.EqualFold(cfg.Format, config.FormatConsole) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(out).Level(Level(cfg.Level)).With().Timestamp().Str("component", "proxy-handlers").Logger()
}

// Level maps a configured level name onto zerolog's levels.
func Level(name string) zerolog.Level {
	lvl, _ := config.ParseLevel(name)
	switch lvl {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
