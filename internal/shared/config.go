package shared

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	LogLevel string

	ProxyAddr     string
	DashboardAddr string
	MetricsAddr   string

	UpstreamBase  string
	UpstreamToken string
	StaticDir     string

	APIBase      string
	DefaultCMAID string

	StorageDriver string
	RedisAddr     string
	RedisPass     string
	RedisDB       int
	MySQLDSN      string
	CacheTTL      time.Duration

	FetchRetries int
	FetchBackoff time.Duration
	FetchRPS     int

	WarmIDs     []string
	WarmWorkers int
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env load failed")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		LogLevel:      env("LOG_LEVEL", "info"),
		ProxyAddr:     ":" + env("PORT", "3000"),
		DashboardAddr: env("DASHBOARD_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ""),
		UpstreamBase:  env("UPSTREAM_BASE_URL", "https://www.microburbs.com.au/report_generator/api"),
		UpstreamToken: env("UPSTREAM_TOKEN", "test"),
		StaticDir:     env("STATIC_DIR", "dist/microburbs-sandbox"),
		APIBase:       env("API_BASE", "http://localhost:3000/api"),
		DefaultCMAID:  env("DEFAULT_CMA_ID", "GANSW704079886"),
		StorageDriver: strings.ToLower(env("STORAGE_DRIVER", "memory")),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/cma?parseTime=true"),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 86400)) * time.Second,
		FetchRetries:  atoi("FETCH_RETRIES", 3),
		FetchBackoff:  time.Duration(atoi("FETCH_BACKOFF_MS", 1000)) * time.Millisecond,
		FetchRPS:      atoi("FETCH_RPS", 5),
		WarmWorkers:   atoi("WARM_WORKERS", 4),
	}
	c.WarmIDs = splitList(env("WARM_IDS", c.DefaultCMAID))
	if c.UpstreamToken == "test" {
		log.Warn().Msg("UPSTREAM_TOKEN is the sandbox token")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
