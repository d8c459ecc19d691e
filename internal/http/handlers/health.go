package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports liveness. The database ping is bounded so a stuck pool
// turns into a fast degraded answer instead of a hanging probe.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.DB.Ping(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("health: database ping failed")
		a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
