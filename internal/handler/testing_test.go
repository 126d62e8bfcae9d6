package handler

import (
	"io"
	"log/slog"

	"httpfetch/internal/client"
	"httpfetch/internal/config"
	"httpfetch/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService builds a FetchService with the given config and no metrics.
func newTestService(cfg *config.Config) *service.FetchService {
	logger := discardLogger()
	return service.NewFetchService(client.NewExecutor(cfg, logger, nil), cfg, logger)
}
