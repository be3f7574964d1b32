package engine

import (
	"log/slog"
	"os"
)

// NewLogger builds the structured logger every engine component logs
// through. debug widens the level to Debug; otherwise only Info and above
// are emitted. See DESIGN.md for why this stays on log/slog rather than a
// third-party structured-logging library.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
