package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog.Logger. Production always logs JSON
// at info level; elsewhere LOG_FORMAT picks the handler and debug is enabled.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg != nil && cfg.IsProduction() {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg != nil && (cfg.LogFormat == "json" || cfg.IsProduction()) {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h).With("service", "sisconven")
}
