package microburbs_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cma_viewer/internal/adapters/microburbs"
	"cma_viewer/internal/domain"
)

func newClient(t *testing.T, base string) *microburbs.Client {
	t.Helper()
	// high RPS and a tiny backoff keep retries fast
	cl, err := microburbs.New(base, "test", 100, microburbs.WithRetry(3, time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_GetCMA_SendsAuthAndQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cma" || r.URL.Query().Get("id") != "GANSW704079886" {
			t.Errorf("unexpected url %s", r.URL.String())
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"suburb": "Belmont North"})
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL+"/api").GetCMA(context.Background(), "GANSW704079886")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["suburb"] != "Belmont North" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClient_GetCMA_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2, 3:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"suburb": "Test"})
		}
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL).GetCMA(context.Background(), "X1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["suburb"] != "Test" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if n := atomic.LoadInt32(&hits); n != 4 {
		t.Fatalf("expected initial call + 3 retries, got %d", n)
	}
}

func TestClient_GetCMA_GivesUpAfterThreeRetries(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).GetCMA(context.Background(), "X1")
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 4 {
		t.Fatalf("expected 4 attempts, got %d", n)
	}
	if msg := domain.FetchErrorMessage(err); msg != "HTTP 503: Service Unavailable" {
		t.Fatalf("message = %q", msg)
	}
}

func TestClient_GetCMA_404NotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).GetCMA(context.Background(), "missing")
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestClient_GetCMA_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close() // nothing listens there any more

	_, err := newClient(t, base).GetCMA(context.Background(), "X1")
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
}

func TestClient_GetCMA_NonObjectBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).GetCMA(context.Background(), "X1")
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusOK {
		t.Fatalf("expected StatusError with 200, got %v", err)
	}
}

func TestNew_RejectsBadBase(t *testing.T) {
	if _, err := microburbs.New("::not a url", "", 1); err == nil {
		t.Fatalf("expected error for invalid base")
	}
}
