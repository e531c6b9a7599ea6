package handlers

import "net/http"

// Status reports worker reachability, adapter inventory and rate-limit state.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	summary := a.Generator.Status(r.Context())

	status := "healthy"
	if !summary.WorkerAvailable {
		status = "unhealthy"
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":            status,
		"comfyui_available": summary.WorkerAvailable,
		"loras_available":   summary.AdapterCount,
		"rate_limit": map[string]any{
			"max_requests":     summary.RateCapacity,
			"time_window":      int(summary.RateWindow.Seconds()),
			"remaining_tokens": summary.RateRemaining,
		},
	})
}

// Health is the liveness probe.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
