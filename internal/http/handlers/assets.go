package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
)

// ServeOutput serves a produced artifact from the worker's output directory.
func (a *App) ServeOutput(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	path, err := a.Store.Resolve(filename)
	if err != nil {
		a.error(w, r, http.StatusBadRequest, domain.KindInvalidInput, "invalid artifact name")
		return
	}
	if !a.Store.Exists(filename) {
		a.error(w, r, http.StatusNotFound, domain.KindGenerationFailed, "artifact not found")
		return
	}
	http.ServeFile(w, r, path)
}
