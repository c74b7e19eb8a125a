// Package cli implements the numtracker command-line surface: a long-running
// serve command and a client command group for driving the contract
// operations directly, without going through the HTTP transport.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ConfigureLogging installs a text slog handler at the given level as the
// default logger. level is one of debug, info, warn, error (case-insensitive).
func ConfigureLogging(level string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "", "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unrecognised tracing level %q", level)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}
