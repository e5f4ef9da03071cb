package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"cma_viewer/internal/adapters/microburbs"
	"cma_viewer/internal/adapters/observability"
	"cma_viewer/internal/app"
	"cma_viewer/internal/shared"
	"cma_viewer/internal/storage"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.UpstreamBase).
		Int("workers", cfg.WarmWorkers).
		Int("ids", len(cfg.WarmIDs)).
		Str("storage", cfg.StorageDriver).
		Msg("warmer starting")
	if cfg.StorageDriver == "memory" || cfg.StorageDriver == "" {
		log.Warn().Msg("memory storage is private to this process; warmed entries are discarded on exit")
	}

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer func() { _ = closeStore() }()

	client, err := microburbs.New(cfg.UpstreamBase, cfg.UpstreamToken, cfg.FetchRPS,
		microburbs.WithRetry(cfg.FetchRetries, cfg.FetchBackoff))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CMA client")
	}
	warm := app.NewWarmService(client, app.NewCMACache(store, cfg.CacheTTL))

	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)

	for _, id := range cfg.WarmIDs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := warm.WarmCMA(ctx, id); err != nil {
				failed.Add(1)
				log.Warn().Str("id", id).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("id", id).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int32("failed", failed.Load()).Msg("warming completed")
}
