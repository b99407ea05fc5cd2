package utils

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	debug := NewLogger("debug", false)
	if !debug.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug logger should enable debug records")
	}

	fallback := NewLogger("chatty", true)
	if fallback.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("unknown level should fall back to info")
	}
	if !fallback.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("fallback logger should enable info records")
	}
}
