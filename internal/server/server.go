// Package server exposes the hub over HTTP: current state, on-demand
// layout, and an SSE stream of snapshot generations.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/mindcity/internal/hub"
	"github.com/lazypower/mindcity/internal/layout"
	"github.com/lazypower/mindcity/internal/watch"
)

// Server is the mindcity HTTP API server.
type Server struct {
	hub        *hub.Hub
	supervisor *watch.Supervisor
	layoutCfg  layout.Config
	router     chi.Router
	version    string
	started    time.Time
}

// New creates a Server over the given hub and supervisor.
func New(h *hub.Hub, sup *watch.Supervisor, layoutCfg layout.Config, version string) *Server {
	s := &Server{
		hub:        h,
		supervisor: sup,
		layoutCfg:  layoutCfg,
		version:    version,
		started:    time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/state", s.handleState)
		r.Get("/layout", s.handleLayout)
		r.Get("/top", s.handleTop)
		r.Get("/stream", s.handleStream)
	})

	s.router = r
}
