//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"cma_viewer/internal/domain"
	mysqlrepo "cma_viewer/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=cma",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/cma?parseTime=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepo_MySQL_KVRoundTrip(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	repo := mysqlrepo.New(db, "cma-viewer")
	other := mysqlrepo.New(db, "other")
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// idempotent
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate twice: %v", err)
	}

	in := domain.CachedResponse{Data: domain.RawResponse{"suburb": "Sydney", "median_price": 1010000.0}, Timestamp: 1700000000000}
	if err := repo.Set(ctx, "cma_X1", in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := other.Set(ctx, "cma_X1", map[string]any{"keep": true}); err != nil {
		t.Fatalf("Set other: %v", err)
	}

	// overwrite keeps a single row
	in.Timestamp++
	if err := repo.Set(ctx, "cma_X1", in); err != nil {
		t.Fatalf("Set again: %v", err)
	}

	var out domain.CachedResponse
	ok, err := repo.Get(ctx, "cma_X1", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.Timestamp != in.Timestamp || out.Data["suburb"] != "Sydney" {
		t.Fatalf("unexpected entry: %+v", out)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if ok, _ := repo.Get(ctx, "cma_X1", &out); ok {
		t.Fatalf("expected miss after Clear")
	}
	var kept map[string]any
	if ok, _ := other.Get(ctx, "cma_X1", &kept); !ok {
		t.Fatalf("Clear must not touch other namespaces")
	}

	if err := other.Remove(ctx, "cma_X1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := other.Get(ctx, "cma_X1", &kept); ok {
		t.Fatalf("expected miss after Remove")
	}
}
