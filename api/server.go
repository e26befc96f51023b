// Package api exposes the template engine over HTTP: content operations
// (parse, validate, variables, render) and template CRUD backed by a Store.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hauswerk/vorlage/recovery"
	"github.com/hauswerk/vorlage/store"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	store   store.Store
	breaker *recovery.Breaker
	log     zerolog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(st store.Store, log zerolog.Logger) *Server {
	s := &Server{
		store:   st,
		breaker: recovery.NewBreaker(recovery.BreakerOptions{}),
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/validate", s.handleValidate)
		r.Post("/variables", s.handleVariables)
		r.Post("/render", s.handleRender)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Post("/", s.handleCreateTemplate)
			r.Get("/{templateID}", s.handleGetTemplate)
			r.Put("/{templateID}", s.handleUpdateTemplate)
			r.Delete("/{templateID}", s.handleDeleteTemplate)
			r.Post("/{templateID}/render", s.handleRenderTemplate)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
