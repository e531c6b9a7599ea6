package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
	"github.com/AJ-Gazin/IdenticAI-API/internal/middleware"
)

type generateRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	LoraName       *string `json:"lora_name"`
	ModelType      string  `json:"model_type"`
	Seed           *int64  `json:"seed"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

type generateResponse struct {
	Status    string       `json:"status"`
	ImageURL  string       `json:"image_url,omitempty"`
	RequestID string       `json:"request_id"`
	Error     *errorDetail `json:"error,omitempty"`
}

// Generate runs one synchronous generation attempt. The call blocks until
// the job reaches a terminal state or the global deadline fires.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	rid := middleware.RequestIDFromContext(r.Context())

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.error(w, r, http.StatusBadRequest, domain.KindInvalidInput, "invalid payload")
		return
	}

	req := domain.GenerationRequest{
		Prompt:         body.Prompt,
		NegativePrompt: body.NegativePrompt,
		Adapter:        a.DefaultAdapter,
		Variant:        domain.ModelVariantDev,
		Seed:           body.Seed,
		Width:          1024,
		Height:         1024,
	}
	if body.LoraName != nil {
		req.Adapter = *body.LoraName
	}
	if body.ModelType != "" {
		req.Variant = domain.ModelVariant(body.ModelType)
	}
	if body.Width != 0 {
		req.Width = body.Width
	}
	if body.Height != 0 {
		req.Height = body.Height
	}

	outcome := a.Generator.Generate(r.Context(), req)
	a.record(r, rid, req, outcome)

	if !outcome.OK() {
		a.json(w, statusForKind(outcome.Err.Kind), generateResponse{
			Status:    "error",
			RequestID: rid,
			Error:     &errorDetail{Error: string(outcome.Err.Kind), Message: outcome.Err.Message, RequestID: rid},
		})
		return
	}
	a.json(w, http.StatusOK, generateResponse{
		Status:    "success",
		ImageURL:  "/output/" + outcome.ArtifactRef,
		RequestID: rid,
	})
}

// record persists the attempt when a repository is configured. Failures are
// logged and swallowed; observability must never change the outcome.
func (a *App) record(r *http.Request, rid string, req domain.GenerationRequest, outcome domain.Outcome) {
	if a.Records == nil {
		return
	}
	rec := &domain.GenerationRecord{
		ID:        uuid.NewString(),
		RequestID: rid,
		Prompt:    req.Prompt,
		Adapter:   req.Adapter,
		Variant:   string(req.Variant),
		CreatedAt: time.Now().UTC(),
	}
	if outcome.OK() {
		rec.Status = domain.GenerationStatusSucceeded
		rec.ArtifactRef = outcome.ArtifactRef
	} else {
		rec.Status = domain.GenerationStatusFailed
		rec.ErrorKind = string(outcome.Err.Kind)
		rec.ErrorMessage = outcome.Err.Message
	}
	if err := a.Records.Create(r.Context(), rec); err != nil {
		a.Logger.Warn().Err(err).Str("request_id", rid).Msg("failed to record generation")
	}
}
