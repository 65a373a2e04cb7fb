package logging

import (
	"log/slog"
	"os"
)

// Setup installs the bootstrap logger: JSON to stdout at INFO. Once the
// database is up, main replaces it with a MultiHandler that adds the
// Postgres error sink.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}
