package handlers

import (
	"net/http"

	"github.com/AJ-Gazin/IdenticAI-API/internal/lora"
)

// ListLoras enumerates the adapter files currently available to the binder.
func (a *App) ListLoras(w http.ResponseWriter, r *http.Request) {
	names := a.Generator.Adapters()
	items := make([]map[string]string, 0, len(names))
	for _, name := range names {
		items = append(items, map[string]string{
			"name":         name,
			"display_name": lora.DisplayName(name),
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"loras":        items,
		"default_lora": a.DefaultAdapter,
	})
}
