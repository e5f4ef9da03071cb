// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"cma_viewer/internal/adapters/web"
	"cma_viewer/internal/app"
)

type Handlers struct {
	Loader    *app.LookupService
	Render    *web.Renderer
	DefaultID string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.home)
	s.mux.Get("/cma", h.search)
	s.mux.Get("/cma/{id}", h.dashboard)
	s.mux.Get("/v1/cma/{id}", h.getCMA)
	s.mux.Handle("/static/*", web.Assets())
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func cmaID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		raw = id
	}
	return strings.TrimSpace(raw)
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, web.CMAPath(h.DefaultID), http.StatusFound)
}

// search handles the search form. A blank ID keeps the current lookup.
func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	if id == "" {
		id = strings.TrimSpace(q.Get("current"))
	}
	if id == "" {
		id = h.DefaultID
	}
	http.Redirect(w, r, web.CMAPath(id), http.StatusSeeOther)
}

// dashboard streams the page: the head and spinner are flushed before a
// foreground fetch, the result follows once the lookup settles.
func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	id := cmaID(r)
	q := r.URL.Query()
	ts := app.TableState{
		Filter:    q.Get("q"),
		Column:    q.Get("sort"),
		Direction: app.SortDirection(q.Get("dir")),
	}.Normalize()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	started := false
	start := func(st app.State) {
		started = true
		if err := h.Render.Start(w, web.NewPage(st, ts)); err != nil {
			log.Error().Err(err).Str("id", id).Msg("render page start failed")
			return
		}
		if f, ok := w.(http.Flusher); ok && st.Phase == app.PhaseLoading {
			f.Flush()
		}
	}

	final := h.Loader.Load(r.Context(), id, func(st app.State) {
		if !started {
			start(st)
		}
	})
	if !started {
		start(final)
	}
	page := web.NewPage(final, ts)
	if err := h.Render.Result(w, page); err != nil {
		log.Error().Err(err).Str("id", id).Msg("render page result failed")
		return
	}
	if err := h.Render.End(w); err != nil {
		log.Error().Err(err).Str("id", id).Msg("render page end failed")
	}
}

// getCMA exposes the final dashboard state of a lookup as JSON.
func (h *Handlers) getCMA(w http.ResponseWriter, r *http.Request) {
	id := cmaID(r)
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must not be blank")
		return
	}
	st := h.Loader.Load(r.Context(), id, nil)
	if st.Phase == app.PhaseError {
		writeProblem(w, http.StatusBadGateway, "Upstream error", st.Error)
		return
	}

	etag, body := calcETagAndBody(st)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getCMA body")
	}
}
