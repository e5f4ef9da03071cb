package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process logger for the given APP_ENV and LOG_LEVEL.
// dev/development gets a console writer, everything else JSON lines.
func NewLogger(env, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
