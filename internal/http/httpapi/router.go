// Package httpapi assembles the chi router for the public API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AJ-Gazin/IdenticAI-API/internal/http/handlers"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra/geoip"
	"github.com/AJ-Gazin/IdenticAI-API/internal/middleware"
)

// RouterOptions carries the cross-cutting pieces the middleware chain needs.
type RouterOptions struct {
	Logger          infra.Logger
	Countries       geoip.CountryResolver
	CORSOrigins     []string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// NewRouter wires middleware and routes around the handler container.
func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(opts.Logger, opts.Countries),
		middleware.CORS(opts.CORSOrigins),
	)

	r.Get("/healthz", app.Health)
	r.Get("/status", app.Status)
	r.Get("/models/loras", app.ListLoras)
	r.Get("/requests", app.ListRequests)
	r.Get("/output/{filename}", app.ServeOutput)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitMax, opts.RateLimitWindow))
		r.Post("/generate", app.Generate)
	})

	return r
}
