package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/gateway"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/credentials"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/storage"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// The database is optional: without it, credentials come from the
	// environment only and the dispatch audit log is disabled.
	var (
		tokenStore *credentials.Store
		dispatches *repo.DispatchRepo
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		runner := infra.NewSQLRunner(dbpool, logger)
		tokenStore = credentials.NewStore(runner)
		dispatches = repo.NewDispatchRepo(runner)
	}

	resolvers := []gateway.CredentialResolver{gateway.EnvResolver{}}
	if tokenStore != nil {
		resolvers = append(resolvers, gateway.StoreResolver{Store: tokenStore})
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	dispatcher := gateway.NewDispatcher(gateway.Options{
		Credentials:       gateway.ChainResolver(resolvers),
		DefaultProvider:   cfg.DefaultProvider,
		GeminiBaseURL:     cfg.GeminiBaseURL,
		OpenAIBaseURL:     cfg.OpenAIBaseURL,
		OpenRouterBaseURL: cfg.OpenRouterBaseURL,
		ReplicateBaseURL:  cfg.ReplicateBaseURL,
		HuggingFaceURL:    cfg.HuggingFaceURL,
		PollInterval:      cfg.PollInterval,
		PollMaxAttempts:   cfg.PollMaxAttempts,
		HTTPClient:        &http.Client{Timeout: cfg.ProviderTimeout},
		Logger:            &logger,
	})

	var countryLookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := handlers.NewApp(cfg, logger, dispatcher, store, dispatches)
	router := httpapi.NewRouter(app, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
