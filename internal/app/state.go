package app

import (
	"time"

	"cma_viewer/internal/domain"
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is what the dashboard renders for the current lookup.
type State struct {
	Phase       Phase             `json:"state"`
	ID          string            `json:"id,omitempty"`
	Data        *domain.ViewModel `json:"data,omitempty"`
	Error       string            `json:"error,omitempty"`
	LastUpdated *time.Time        `json:"lastUpdated,omitempty"`
}

// Event drives Reduce. One user event (SearchSubmitted) and two completions
// (CacheHit, FetchSettled).
type Event interface{ event() }

type SearchSubmitted struct{ ID string }

type CacheHit struct {
	ID  string
	Raw domain.RawResponse
	At  time.Time
}

type FetchSettled struct {
	ID  string
	Raw domain.RawResponse
	Err error
	At  time.Time
}

func (SearchSubmitted) event() {}
func (CacheHit) event() {}
func (FetchSettled) event() {}

// Reduce is the dashboard state transition function:
// idle -> loading -> success|error, with a cache hit jumping straight to success.
// Completions for an ID other than the current one are dropped.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case SearchSubmitted:
		if ev.ID == "" {
			return s
		}
		return State{Phase: PhaseLoading, ID: ev.ID}

	case CacheHit:
		if ev.ID != s.ID {
			return s
		}
		return success(ev.ID, ev.Raw, ev.At)

	case FetchSettled:
		if ev.ID != s.ID {
			return s
		}
		if ev.Err != nil {
			return State{Phase: PhaseError, ID: ev.ID, Error: domain.FetchErrorMessage(ev.Err)}
		}
		return success(ev.ID, ev.Raw, ev.At)
	}
	return s
}

func success(id string, raw domain.RawResponse, at time.Time) State {
	vm := AdaptCMA(raw, at)
	ts := vm.LastUpdated
	return State{Phase: PhaseSuccess, ID: id, Data: &vm, LastUpdated: &ts}
}
