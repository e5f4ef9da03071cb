package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"cma_viewer/internal/adapters/observability"
	"cma_viewer/internal/domain"
)

const maxBackgroundRefreshes = 8

// LookupService resolves a CMA ID into dashboard states with
// stale-while-revalidate semantics on top of CMACache.
type LookupService struct {
	client domain.CMAClient
	cache  *CMACache
	now    func() time.Time

	refreshes singleflight.Group
	sem       *semaphore.Weighted
	wg        sync.WaitGroup
}

func NewLookupService(c domain.CMAClient, cache *CMACache) *LookupService {
	return &LookupService{
		client: c,
		cache:  cache,
		now:    time.Now,
		sem:    semaphore.NewWeighted(maxBackgroundRefreshes),
	}
}

// Load emits the states of one lookup in order and returns the final one.
// A cache hit emits success once and refreshes the entry in the background;
// that refresh never calls emit.
func (s *LookupService) Load(ctx context.Context, id string, emit func(State)) State {
	if emit == nil {
		emit = func(State) {}
	}
	id = strings.TrimSpace(id)
	st := Reduce(State{Phase: PhaseIdle}, SearchSubmitted{ID: id})
	if st.Phase == PhaseIdle {
		// blank search: nothing to load
		return st
	}

	if cached, ok := s.cache.Get(ctx, id); ok {
		st = Reduce(st, CacheHit{ID: id, Raw: cached.Data, At: time.UnixMilli(cached.Timestamp)})
		emit(st)
		s.refreshInBackground(ctx, id)
		return st
	}

	emit(st)
	raw, err := s.client.GetCMA(ctx, id)
	if err == nil {
		s.cache.Put(ctx, id, raw)
	} else {
		log.Warn().Str("id", id).Err(err).Msg("cma fetch failed")
	}
	st = Reduce(st, FetchSettled{ID: id, Raw: raw, Err: err, At: s.now()})
	emit(st)
	return st
}

// refreshInBackground re-fetches id detached from the caller's cancellation.
// Concurrent refreshes of one ID collapse into a single fetch; when too many
// refreshes are already running the new one is skipped.
func (s *LookupService) refreshInBackground(ctx context.Context, id string) {
	if !s.sem.TryAcquire(1) {
		log.Debug().Str("id", id).Msg("background refresh skipped")
		return
	}
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)

		_, err, _ := s.refreshes.Do(id, func() (any, error) {
			raw, err := s.client.GetCMA(bg, id)
			if err != nil {
				return nil, err
			}
			s.cache.Put(bg, id, raw)
			return nil, nil
		})
		if err != nil {
			observability.ObserveCache(cacheLabel, "refresh_err")
			log.Debug().Str("id", id).Err(err).Msg("background refresh failed")
			return
		}
		observability.ObserveCache(cacheLabel, "refresh_ok")
	}()
}

// Wait blocks until background refreshes started so far have finished.
func (s *LookupService) Wait() { s.wg.Wait() }
