package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/odl/internal/catalog"
)

// NewRouter creates a chi router serving the program database.
//
// The upload endpoint (POST /) and GET /api/ddoi/getDefs speak the same
// protocol as the observatory database, so odl.Client works against either.
// authEnabled controls whether Bearer token auth is enforced on everything
// but the health checks. sseHandler, if non-nil, is mounted at
// GET /api/events. mws run before routing.
func NewRouter(svc *catalog.Service, authEnabled bool, token string, sseHandler http.Handler, mws ...func(http.Handler) http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(mws...)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", h.Health)
	r.Get("/health/ready", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		// Database protocol.
		r.Post("/", h.Upload)
		r.Head("/", h.Ping)
		r.Get("/api/ddoi/getDefs", h.GetDefs)

		// Programs.
		r.Get("/api/programs", h.ListPrograms)
		r.Get("/api/programs/*", h.GetProgram)
		r.Delete("/api/programs/*", h.DeleteProgram)
		r.Get("/api/estimate/*", h.Estimate)
		r.Get("/api/cals/*", h.Cals)

		// Definitions.
		r.Get("/api/definitions", h.Search)
		r.Get("/api/referrers", h.Referrers)

		if sseHandler != nil {
			r.Get("/api/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
