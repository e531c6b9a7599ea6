// Package handlers implements the public API endpoints on top of the
// generation orchestrator.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
	"github.com/AJ-Gazin/IdenticAI-API/internal/generate"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
	"github.com/AJ-Gazin/IdenticAI-API/internal/middleware"
	"github.com/AJ-Gazin/IdenticAI-API/internal/storage"
)

// Generator is the orchestration surface the handlers call into.
// *generate.Orchestrator implements it.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) domain.Outcome
	Status(ctx context.Context) generate.StatusSummary
	Adapters() []string
}

// App is the handler container: one per process, wired at startup.
type App struct {
	Logger         infra.Logger
	Generator      Generator
	Records        domain.GenerationRepository
	Store          *storage.FileStore
	DefaultAdapter string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorDetail struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (a *App) error(w http.ResponseWriter, r *http.Request, code int, kind domain.Kind, message string) {
	rid := middleware.RequestIDFromContext(r.Context())
	a.json(w, code, map[string]any{
		"status":     "error",
		"request_id": rid,
		"error":      errorDetail{Error: string(kind), Message: message, RequestID: rid},
	})
}

// statusForKind maps failure kinds to HTTP statuses.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindTemplateNotFound, domain.KindAdapterNotFound:
		return http.StatusNotFound
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindConnectionError, domain.KindGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
