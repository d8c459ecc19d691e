// Package httpapi assembles the ops router.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/medusaxd/medusa-bot/internal/http/handlers"
	"github.com/medusaxd/medusa-bot/internal/infra"
	"github.com/medusaxd/medusa-bot/internal/middleware"
)

// NewRouter wires the ops endpoints behind the shared middleware chain.
func NewRouter(app *handlers.App, logger infra.Logger, ratePerMin int) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.RateLimit(ratePerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats", app.StatsSummary)

	return r
}
