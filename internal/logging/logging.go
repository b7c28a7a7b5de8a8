// Package logging configures colored structured logging with tint.
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (overrides the configured level)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// EnvLevel is the environment variable that overrides the log level.
const EnvLevel = "LOG_LEVEL"

// New returns a tint logger writing to w at level. Colors are disabled when
// color is false.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	}))
}

// Setup installs a logger writing to w at level as the slog default and
// returns it. Colors are enabled only when w is a terminal.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	f, ok := w.(*os.File)
	logger := New(w, level, ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Level resolves the effective level: LOG_LEVEL if set and valid, otherwise
// configured. verbose forces debug.
func Level(configured string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if env := os.Getenv(EnvLevel); env != "" {
		if l, err := ParseLevel(env); err == nil {
			return l
		}
	}
	l, _ := ParseLevel(configured)
	return l
}
