package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/lcsc2kicad/internal/componentservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// files, if non-nil, serves the generated library files under /files.
func NewRouter(svc *componentservice.Service, authEnabled bool, token string, sseHandler http.Handler, files *FileHandler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Metrics stay reachable for scrapers without a token.
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Get("/components", h.ListComponents)
		r.Get("/components/{id}", h.GetComponent)
		r.Post("/components/{id}", h.ConvertComponent)
		r.Delete("/components/{id}", h.RemoveComponent)

		r.Get("/search", h.Search)

		if files != nil {
			r.Get("/files/symbols", files.ServeSymbols)
			r.Get("/files/{kind}", files.ListFiles)
			r.Get("/files/{kind}/{filename}", files.ServeFile)
		}

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
