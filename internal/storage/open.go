package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"cma_viewer/internal/adapters/memory"
	redisad "cma_viewer/internal/adapters/redis"
	"cma_viewer/internal/domain"
	"cma_viewer/internal/shared"
	mysqlrepo "cma_viewer/internal/storage/mysql"
)

// Namespace prefixes every key the viewer writes.
const Namespace = "cma-viewer"

// Open returns the Storage selected by STORAGE_DRIVER and a func releasing it.
func Open(ctx context.Context, cfg shared.Config) (domain.Storage, func() error, error) {
	switch cfg.StorageDriver {
	case "", "memory":
		return memory.New(Namespace), func() error { return nil }, nil

	case "redis":
		// entries outlive the validity window a little so expiry is observed by the cache
		r := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, Namespace, 2*cfg.CacheTTL)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis storage ok")
		return r, r.Close, nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		repo := mysqlrepo.New(db, Namespace)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Msg("database connection ok")
		return repo, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}
