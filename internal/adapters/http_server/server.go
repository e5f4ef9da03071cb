package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 15 * time.Second

type Server struct{ mux *chi.Mux }

type Option func(*options)

type options struct{ timeout time.Duration }

// WithTimeout bounds every request context; zero or negative disables it.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

func New(opts ...Option) *Server {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	m := chi.NewRouter()

	// all middlewares go before any route
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	if o.timeout > 0 {
		m.Use(Timeout(o.timeout))
	}
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
