package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DASHBOARD_ADDR", "CACHE_TTL_SECONDS", "WARM_IDS", "DEFAULT_CMA_ID", "STORAGE_DRIVER"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.ProxyAddr != ":3000" || c.DashboardAddr != ":8080" {
		t.Fatalf("addrs: %q %q", c.ProxyAddr, c.DashboardAddr)
	}
	if c.CacheTTL != 24*time.Hour {
		t.Fatalf("ttl: %v", c.CacheTTL)
	}
	if c.StorageDriver != "memory" {
		t.Fatalf("driver: %q", c.StorageDriver)
	}
	if len(c.WarmIDs) != 1 || c.WarmIDs[0] != "GANSW704079886" {
		t.Fatalf("warm ids: %v", c.WarmIDs)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("FETCH_BACKOFF_MS", "5")
	t.Setenv("FETCH_RETRIES", "oops")
	t.Setenv("WARM_IDS", " A1, ,B2 ")
	t.Setenv("STORAGE_DRIVER", "Redis")
	c := Load()
	if c.ProxyAddr != ":4000" {
		t.Fatalf("proxy addr: %q", c.ProxyAddr)
	}
	if c.FetchBackoff != 5*time.Millisecond {
		t.Fatalf("backoff: %v", c.FetchBackoff)
	}
	if c.FetchRetries != 3 {
		t.Fatalf("retries should fall back to default, got %d", c.FetchRetries)
	}
	if len(c.WarmIDs) != 2 || c.WarmIDs[0] != "A1" || c.WarmIDs[1] != "B2" {
		t.Fatalf("warm ids: %v", c.WarmIDs)
	}
	if c.StorageDriver != "redis" {
		t.Fatalf("driver: %q", c.StorageDriver)
	}
}
