package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sumanize/sumanize"
	"github.com/sumanize/sumanize/middleware"
	"github.com/sumanize/sumanize/summarize"
)

// NewRouter assembles the API router with the authorization gate outermost,
// so every request is classified exactly once before any handler runs.
func NewRouter(engine *sumanize.Engine, service *summarize.Service) http.Handler {
	auth := NewAuthHandler(engine)
	sum := NewSummarizeHandler(engine, service)

	r := chi.NewRouter()
	r.Use(middleware.Gate(engine))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)
		})
		r.Post("/summarize", sum.Summarize)
		r.Get("/summaries", sum.History)
	})

	return r
}
