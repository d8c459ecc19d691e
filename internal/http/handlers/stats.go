package handlers

import "net/http"

// StatsSummary exposes the same counters as the /stats bot command.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Audit.Stats(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("stats query failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_users":       stats.TotalUsers,
		"total_banned":      stats.TotalBanned,
		"total_generations": stats.TotalGenerations,
		"generations_24h":   stats.Generations24h,
		"active_users_7d":   stats.ActiveUsers7d,
	})
}
