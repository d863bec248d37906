package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops everything. Keeps test output
// readable when the engine's info logging is not under test.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
