package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/urlpop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/urlpop/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/urlpop/internal/httpserver/mw"
)

func init() { Register("suggestions", registerSuggestions) }

// suggestionWriteLimit builds the per client rate limit of routes that mutate suggestions.
func suggestionWriteLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMinute,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})
}

func registerSuggestions(r chi.Router, d deps.Deps) {
	limit := suggestionWriteLimit(d)
	admin := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
	jsonOnly := middleware.AllowContentType("application/json")

	r.Route("/suggestions", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(middleware.NoCache)

		// Whole-store operations
		r.Get("/", handlers.ExportSuggestions(d))
		r.With(admin, limit, jsonOnly).Put("/", handlers.ImportSuggestions(d))
		r.With(admin).Get("/snapshots", handlers.ListSnapshots(d))
		r.With(admin, limit).Post("/snapshots/{id}/restore", handlers.RestoreSnapshot(d))

		// Per-domain operations
		r.Route("/{domain}", func(r chi.Router) {
			r.Get("/", handlers.GetDomain(d))
			r.With(limit, jsonOnly).Post("/", handlers.RecordValue(d))
			r.With(limit).Delete("/", handlers.DeleteDomain(d))

			r.With(limit, jsonOnly).Post("/bind", handlers.Bind(d))
			r.With(limit, jsonOnly).Post("/unbind", handlers.Unbind(d))

			r.Get("/{param}", handlers.GetValues(d))
			r.With(limit).Delete("/{param}", handlers.DeleteParam(d))
		})
	})
}
