package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repo is a Storage persisted in MySQL, one row per (namespace, key). It
// survives restarts and can be shared by several dashboard replicas.
type Repo struct {
	db *sql.DB
	ns string
}

func New(db *sql.DB, namespace string) *Repo { return &Repo{db: db, ns: namespace} }

// Migrate creates the kv_store table when missing.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createKVSQL); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, getKVSQL, r.ns, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dst)
}

func (r *Repo) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertKVSQL, r.ns, key, string(b))
	return err
}

func (r *Repo) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, deleteKVSQL, r.ns, key)
	return err
}

func (r *Repo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, clearKVSQL, r.ns)
	return err
}
