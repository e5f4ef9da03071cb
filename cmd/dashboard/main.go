package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "cma_viewer/internal/adapters/http_server"
	"cma_viewer/internal/adapters/microburbs"
	"cma_viewer/internal/adapters/observability"
	"cma_viewer/internal/adapters/web"
	"cma_viewer/internal/app"
	"cma_viewer/internal/shared"
	"cma_viewer/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("storage init failed")
	}
	defer func() { _ = closeStore() }()

	client, err := microburbs.New(cfg.APIBase, cfg.UpstreamToken, cfg.FetchRPS,
		microburbs.WithRetry(cfg.FetchRetries, cfg.FetchBackoff))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CMA client")
	}
	loader := app.NewLookupService(client, app.NewCMACache(store, cfg.CacheTTL))
	render, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("template parse failed")
	}

	// http; retries with backoff can outlast the default request timeout
	srv := server.New(server.WithTimeout(time.Minute))
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Loader: loader, Render: render, DefaultID: cfg.DefaultCMAID})

	log.Info().
		Str("addr", cfg.DashboardAddr).
		Str("api", cfg.APIBase).
		Str("storage", cfg.StorageDriver).
		Msg("dashboard listening")
	httpSrv := &http.Server{Addr: cfg.DashboardAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	loader.Wait()
	log.Info().Msg("dashboard stopped")
}
