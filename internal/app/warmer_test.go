package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cma_viewer/internal/adapters/memory"
	"cma_viewer/internal/domain"
)

func TestWarmCMA(t *testing.T) {
	ctx := context.Background()

	t.Run("stores fetched payload", func(t *testing.T) {
		cache := NewCMACache(memory.New("test"), DefaultCMATTL)
		w := NewWarmService(&fakeClient{results: []fakeResult{{raw: domain.RawResponse{"suburb": "Sydney"}}}}, cache)
		require.NoError(t, w.WarmCMA(ctx, " X1 "))
		got, ok := cache.Get(ctx, "X1")
		require.True(t, ok)
		assert.Equal(t, "Sydney", got.Data["suburb"])
	})

	t.Run("unknown id evicts stale entry", func(t *testing.T) {
		cache := NewCMACache(memory.New("test"), DefaultCMATTL)
		cache.Put(ctx, "X1", domain.RawResponse{"suburb": "Old"})
		w := NewWarmService(&fakeClient{results: []fakeResult{{err: &domain.StatusError{Code: 404}}}}, cache)
		require.NoError(t, w.WarmCMA(ctx, "X1"))
		_, ok := cache.Get(ctx, "X1")
		assert.False(t, ok)
	})

	t.Run("transient failure is reported and keeps entry", func(t *testing.T) {
		cache := NewCMACache(memory.New("test"), DefaultCMATTL)
		cache.Put(ctx, "X1", domain.RawResponse{"suburb": "Old"})
		netErr := &domain.NetworkError{Err: errors.New("connection refused")}
		w := NewWarmService(&fakeClient{results: []fakeResult{{err: netErr}}}, cache)
		err := w.WarmCMA(ctx, "X1")
		require.Error(t, err)
		assert.ErrorIs(t, err, netErr)
		_, ok := cache.Get(ctx, "X1")
		assert.True(t, ok)
	})

	t.Run("blank id", func(t *testing.T) {
		w := NewWarmService(&fakeClient{results: []fakeResult{{}}}, NewCMACache(memory.New("test"), 0))
		assert.ErrorIs(t, w.WarmCMA(ctx, "  "), domain.ErrEmptyID)
	})
}
