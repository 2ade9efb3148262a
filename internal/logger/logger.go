// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger writing to w at the given level. Unknown levels fall
// back to info.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).With().Timestamp().Str("service", "stockassistant").Logger().Level(lvl)
}

// Init installs a stdout logger as the global zerolog logger.
func Init(level string, pretty bool) zerolog.Logger {
	l := New(os.Stdout, level, pretty)
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}
