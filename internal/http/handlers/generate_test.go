package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
	"github.com/AJ-Gazin/IdenticAI-API/internal/generate"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
	"github.com/AJ-Gazin/IdenticAI-API/internal/storage"
)

type fakeGenerator struct {
	outcome  domain.Outcome
	status   generate.StatusSummary
	adapters []string
	gotReq   domain.GenerationRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.GenerationRequest) domain.Outcome {
	f.gotReq = req
	return f.outcome
}

func (f *fakeGenerator) Status(ctx context.Context) generate.StatusSummary {
	return f.status
}

func (f *fakeGenerator) Adapters() []string {
	return f.adapters
}

func newTestApp(gen *fakeGenerator) *App {
	return &App{
		Logger:         infra.Logger(zerolog.Nop()),
		Generator:      gen,
		DefaultAdapter: "steampunk.safetensors",
	}
}

func postGenerate(t *testing.T, app *App, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)
	return rec
}

func TestGenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{outcome: domain.Succeeded("flux_0001.png")}
	app := newTestApp(gen)

	rec := postGenerate(t, app, `{"prompt":"a castle","width":1024,"height":1024}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Status   string `json:"status"`
		ImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" || resp.ImageURL != "/output/flux_0001.png" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestGenerateAppliesDefaults(t *testing.T) {
	gen := &fakeGenerator{outcome: domain.Succeeded("x.png")}
	app := newTestApp(gen)

	postGenerate(t, app, `{"prompt":"a castle"}`)
	if gen.gotReq.Adapter != "steampunk.safetensors" {
		t.Fatalf("Adapter = %q, want default", gen.gotReq.Adapter)
	}
	if gen.gotReq.Variant != domain.ModelVariantDev {
		t.Fatalf("Variant = %q, want dev", gen.gotReq.Variant)
	}
	if gen.gotReq.Width != 1024 || gen.gotReq.Height != 1024 {
		t.Fatalf("dimensions = %dx%d, want 1024x1024", gen.gotReq.Width, gen.gotReq.Height)
	}
}

func TestGenerateExplicitNoneAdapterPassedThrough(t *testing.T) {
	gen := &fakeGenerator{outcome: domain.Succeeded("x.png")}
	app := newTestApp(gen)

	postGenerate(t, app, `{"prompt":"a castle","lora_name":"none"}`)
	if gen.gotReq.Adapter != "none" {
		t.Fatalf("Adapter = %q, want none", gen.gotReq.Adapter)
	}
}

func TestGenerateMalformedPayload(t *testing.T) {
	app := newTestApp(&fakeGenerator{})
	rec := postGenerate(t, app, `{"prompt":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateFailureStatusMapping(t *testing.T) {
	tests := []struct {
		kind domain.Kind
		want int
	}{
		{domain.KindInvalidInput, http.StatusBadRequest},
		{domain.KindTemplateNotFound, http.StatusNotFound},
		{domain.KindAdapterNotFound, http.StatusNotFound},
		{domain.KindTemplateInvalid, http.StatusInternalServerError},
		{domain.KindNodeKindMissing, http.StatusInternalServerError},
		{domain.KindRateLimited, http.StatusTooManyRequests},
		{domain.KindTimeout, http.StatusGatewayTimeout},
		{domain.KindConnectionError, http.StatusBadGateway},
		{domain.KindGenerationFailed, http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			gen := &fakeGenerator{outcome: domain.Failed(domain.E(tc.kind, "boom"))}
			rec := postGenerate(t, newTestApp(gen), `{"prompt":"a castle"}`)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			var resp struct {
				Status string       `json:"status"`
				Error  *errorDetail `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != "error" || resp.Error == nil || resp.Error.Error != string(tc.kind) {
				t.Fatalf("response = %+v", resp)
			}
		})
	}
}

func TestStatusEndpoint(t *testing.T) {
	gen := &fakeGenerator{status: generate.StatusSummary{
		WorkerAvailable: true,
		AdapterCount:    2,
		RateCapacity:    10,
		RateWindow:      time.Minute,
		RateRemaining:   7.5,
	}}
	app := newTestApp(gen)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	app.Status(rec, req)

	var resp struct {
		Status    string `json:"status"`
		Available bool   `json:"comfyui_available"`
		Loras     int    `json:"loras_available"`
		RateLimit struct {
			Max       int     `json:"max_requests"`
			Window    int     `json:"time_window"`
			Remaining float64 `json:"remaining_tokens"`
		} `json:"rate_limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || !resp.Available || resp.Loras != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.RateLimit.Max != 10 || resp.RateLimit.Window != 60 || resp.RateLimit.Remaining != 7.5 {
		t.Fatalf("rate_limit = %+v", resp.RateLimit)
	}
}

func TestStatusUnhealthyWhenWorkerDown(t *testing.T) {
	app := newTestApp(&fakeGenerator{status: generate.StatusSummary{WorkerAvailable: false}})
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	app.Status(rec, req)

	if !strings.Contains(rec.Body.String(), `"status":"unhealthy"`) {
		t.Fatalf("body = %s, want unhealthy", rec.Body.String())
	}
}

func TestListLoras(t *testing.T) {
	app := newTestApp(&fakeGenerator{adapters: []string{"cyber_punk.safetensors"}})
	req := httptest.NewRequest(http.MethodGet, "/models/loras", nil)
	rec := httptest.NewRecorder()
	app.ListLoras(rec, req)

	var resp struct {
		Loras []struct {
			Name        string `json:"name"`
			DisplayName string `json:"display_name"`
		} `json:"loras"`
		Default string `json:"default_lora"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Loras) != 1 || resp.Loras[0].DisplayName != "Cyber Punk" {
		t.Fatalf("loras = %+v", resp.Loras)
	}
	if resp.Default != "steampunk.safetensors" {
		t.Fatalf("default_lora = %q", resp.Default)
	}
}

func TestListRequestsWithoutDatabase(t *testing.T) {
	app := newTestApp(&fakeGenerator{})
	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	rec := httptest.NewRecorder()
	app.ListRequests(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func chiRouterWithOutput(app *App) http.Handler {
	r := chi.NewRouter()
	r.Get("/output/{filename}", app.ServeOutput)
	return r
}

func TestServeOutput(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "flux_0001.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	app := newTestApp(&fakeGenerator{})
	app.Store = store

	serve := func(filename string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/output/"+filename, nil)
		rec := httptest.NewRecorder()
		router := chiRouterWithOutput(app)
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := serve("flux_0001.png"); rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Fatalf("serve existing = %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve("missing.png"); rec.Code != http.StatusNotFound {
		t.Fatalf("serve missing = %d, want 404", rec.Code)
	}
}
