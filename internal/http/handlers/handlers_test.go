package handlers

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/gateway"
	"server/internal/infra"
	"server/internal/storage"
)

// keyResolver resolves credentials from a fixed map keyed by provider ID.
type keyResolver map[string]string

func (k keyResolver) Resolve(_ context.Context, d gateway.ProviderDescriptor) (string, error) {
	if v := k[d.ID]; v != "" {
		return v, nil
	}
	return "", gateway.ErrMissingCredential
}

func newTestApp(t *testing.T, opts gateway.Options) *App {
	t.Helper()
	cfg := &infra.Config{
		AppEnv:          "test",
		Port:            "8080",
		StoragePath:     t.TempDir(),
		StorageBaseURL:  "http://localhost:8080/static",
		DefaultProvider: "GEMINI",
		RateLimitPerMin: 100,
	}
	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	logger := infra.Logger(zerolog.New(io.Discard))
	opts.Logger = &logger
	return NewApp(cfg, logger, gateway.NewDispatcher(opts), store, nil)
}
