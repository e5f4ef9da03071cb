package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "cma_viewer/internal/adapters/http_server"
	"cma_viewer/internal/adapters/observability"
	"cma_viewer/internal/adapters/proxy"
	"cma_viewer/internal/shared"
)

func main() {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	fwd, err := proxy.NewForwarder(cfg.UpstreamBase, cfg.UpstreamToken, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize forwarder")
	}

	srv := server.New(server.WithTimeout(45 * time.Second))
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.Mount("/*", proxy.Routes(fwd, proxy.Static(cfg.StaticDir)))

	log.Info().
		Str("addr", cfg.ProxyAddr).
		Str("upstream", cfg.UpstreamBase).
		Str("static", cfg.StaticDir).
		Msg("proxy listening")
	httpSrv := &http.Server{Addr: cfg.ProxyAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
