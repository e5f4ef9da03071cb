package proxy

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes wires CORS, the /api relay and the static site into one handler.
func Routes(fwd *Forwarder, static http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(CORS)
	r.Handle(Prefix, fwd)
	r.Handle(Prefix+"/*", fwd)
	if static != nil {
		r.Handle("/*", static)
	}
	return r
}
