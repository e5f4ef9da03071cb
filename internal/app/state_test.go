package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cma_viewer/internal/domain"
)

func TestReduce(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	idle := State{Phase: PhaseIdle}

	assert.Equal(t, idle, Reduce(idle, SearchSubmitted{ID: ""}), "blank search is ignored")

	loading := Reduce(idle, SearchSubmitted{ID: "X1"})
	assert.Equal(t, State{Phase: PhaseLoading, ID: "X1"}, loading)

	ok := Reduce(loading, FetchSettled{ID: "X1", Raw: domain.RawResponse{"suburb": "Sydney"}, At: at})
	assert.Equal(t, PhaseSuccess, ok.Phase)
	require.NotNil(t, ok.Data)
	assert.Equal(t, "Sydney", *ok.Data.Suburb)
	require.NotNil(t, ok.LastUpdated)
	assert.Equal(t, at, *ok.LastUpdated)
	assert.Empty(t, ok.Error)

	failed := Reduce(loading, FetchSettled{ID: "X1", Err: &domain.StatusError{Code: 500}})
	assert.Equal(t, State{Phase: PhaseError, ID: "X1", Error: "HTTP 500: Internal Server Error"}, failed)

	hit := Reduce(loading, CacheHit{ID: "X1", Raw: domain.RawResponse{}, At: at})
	assert.Equal(t, PhaseSuccess, hit.Phase)

	// a new search replaces whatever was shown
	again := Reduce(ok, SearchSubmitted{ID: "X2"})
	assert.Equal(t, State{Phase: PhaseLoading, ID: "X2"}, again)

	// late completion of the previous lookup is dropped
	assert.Equal(t, again, Reduce(again, FetchSettled{ID: "X1", Raw: domain.RawResponse{}}))
	assert.Equal(t, again, Reduce(again, CacheHit{ID: "X1", Raw: domain.RawResponse{}}))
}
