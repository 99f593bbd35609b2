package latte

import (
	"log/slog"

	"github.com/gogpu/latte/internal/logging"
)

// SetLogger configures the logger for latte and all its sub-packages.
// By default, latte produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by latte:
//   - [slog.LevelDebug]: skipped draws, cache hits and misses, uploads
//   - [slog.LevelInfo]: frame summaries and evictions
//   - [slog.LevelWarn]: uploads skipped for formats without a host copy path
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	latte.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by latte.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.L()
}
