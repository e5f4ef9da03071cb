package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"cma_viewer/internal/domain"
)

// WarmService pre-populates the CMA cache so the first dashboard lookup for
// an ID is served from storage.
type WarmService struct {
	client domain.CMAClient
	cache  *CMACache
}

func NewWarmService(c domain.CMAClient, cache *CMACache) *WarmService {
	return &WarmService{client: c, cache: cache}
}

// WarmCMA fetches id and stores it. Unknown or forbidden IDs are not errors:
// their stale entries are evicted so the dashboard does not keep serving them.
func (s *WarmService) WarmCMA(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrEmptyID
	}

	raw, err := s.client.GetCMA(ctx, id)
	if err != nil {
		var se *domain.StatusError
		if errors.As(err, &se) {
			switch se.Code {
			case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
				log.Warn().Str("id", id).Int("status", se.Code).Msg("cma unavailable, evicting")
				s.cache.Remove(ctx, id)
				return nil
			}
		}
		return fmt.Errorf("warm %s: %w", id, err)
	}

	s.cache.Put(ctx, id, raw)
	return nil
}
