package utils

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger for the engine daemon. level is
// one of debug, info, warn, error (any case); unrecognised values fall back
// to info. json selects the machine-readable handler for log shippers, text
// is for local runs.
func NewLogger(level string, json bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
