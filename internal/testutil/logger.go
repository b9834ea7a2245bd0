package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops everything. Suppresses logs in
// tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
