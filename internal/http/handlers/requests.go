package handlers

import (
	"net/http"
	"strconv"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
)

// ListRequests returns recent generation records, newest first. Requires a
// configured database.
func (a *App) ListRequests(w http.ResponseWriter, r *http.Request) {
	if a.Records == nil {
		a.error(w, r, http.StatusServiceUnavailable, domain.KindGenerationFailed, "generation history is not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := a.Records.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list generation records")
		a.error(w, r, http.StatusInternalServerError, domain.KindGenerationFailed, "failed to load generation history")
		return
	}

	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		item := map[string]any{
			"id":         rec.ID,
			"request_id": rec.RequestID,
			"prompt":     rec.Prompt,
			"adapter":    rec.Adapter,
			"variant":    rec.Variant,
			"status":     string(rec.Status),
			"created_at": rec.CreatedAt,
		}
		if rec.ArtifactRef != "" {
			item["image_url"] = "/output/" + rec.ArtifactRef
		}
		if rec.ErrorKind != "" {
			item["error"] = map[string]string{"error": rec.ErrorKind, "message": rec.ErrorMessage}
		}
		items = append(items, item)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
