package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/urlpop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/urlpop/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/urlpop/internal/httpserver/mw"
)

func init() { Register("url", registerURL) }

func registerURL(r chi.Router, d deps.Deps) {
	r.Route("/url", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/parse", handlers.ParseURL(d))
		r.Post("/edit", handlers.EditURL(d))
		r.Post("/highlight", handlers.HighlightURL(d))
		r.With(suggestionWriteLimit(d)).Post("/commit", handlers.CommitURL(d))
	})
}
