// Package handlers holds the ops HTTP endpoints: a health probe for the
// hosting platform and a read-only stats summary.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medusaxd/medusa-bot/internal/domain"
	"github.com/medusaxd/medusa-bot/internal/infra"
)

// Pinger is the liveness surface of the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App bundles the dependencies of the ops endpoints.
type App struct {
	DB     Pinger
	Audit  domain.AuditStore
	Logger *infra.Logger
}

// NewApp creates a new App.
func NewApp(db Pinger, audit domain.AuditStore, logger *infra.Logger) *App {
	return &App{DB: db, Audit: audit, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, msg string) {
	a.json(w, code, map[string]string{"error": kind, "message": msg})
}
