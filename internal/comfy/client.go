package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
	"github.com/AJ-Gazin/IdenticAI-API/internal/workflow"
)

// Options configures the ComfyUI HTTP client.
type Options struct {
	Host           string
	Port           string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against a ComfyUI worker.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	logger     *infra.Logger
}

type submitRequest struct {
	Prompt   workflow.Graph `json:"prompt"`
	ClientID string         `json:"client_id"`
}

type submitResponse struct {
	PromptID string `json:"prompt_id"`
	Error    string `json:"error"`
}

// HistoryEntry is the recorded outcome of one job in the worker's history
// store.
type HistoryEntry struct {
	Outputs map[string]NodeOutput `json:"outputs"`
}

// FirstArtifact returns the first output image filename recorded for the
// job, scanning node ids in sorted order.
func (h *HistoryEntry) FirstArtifact() (string, bool) {
	if h == nil {
		return "", false
	}
	ids := make([]string, 0, len(h.Outputs))
	for id := range h.Outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, img := range h.Outputs[id].Images {
			if img.Filename != "" {
				return img.Filename, true
			}
		}
	}
	return "", false
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := strings.TrimSpace(opts.Port)
	if port == "" {
		port = "8188"
	}
	logger := opts.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.Nop())
		logger = &discard
	}
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%s", host, port),
		wsURL:      fmt.Sprintf("ws://%s:%s/ws", host, port),
		httpClient: httpClient,
		logger:     logger,
	}
}

// WSURL returns the websocket endpoint for the given client correlation id.
func (c *Client) WSURL(clientID string) string {
	return c.wsURL + "?clientId=" + url.QueryEscape(clientID)
}

// SubmitJob queues the bound graph on the worker and returns the opaque job
// identifier correlating push events and history lookups.
func (c *Client) SubmitJob(ctx context.Context, graph workflow.Graph, clientID string) (string, error) {
	body, err := json.Marshal(submitRequest{Prompt: graph, ClientID: clientID})
	if err != nil {
		return "", fmt.Errorf("comfy: encode job: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("comfy: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("comfy: submit job: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("comfy: read submit response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("comfy: submit status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var decoded submitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("comfy: decode submit response: %w", err)
	}
	if decoded.PromptID == "" {
		return "", fmt.Errorf("comfy: submit response missing prompt id")
	}
	c.logger.Debug().Str("job_id", decoded.PromptID).Str("client_id", clientID).Msg("comfy: job queued")
	return decoded.PromptID, nil
}

// History queries the worker's history store for a job id. Unknown ids report
// (nil, false, nil), never an error.
func (c *Client) History(ctx context.Context, jobID string) (*HistoryEntry, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, false, fmt.Errorf("comfy: build history request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("comfy: query history: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("comfy: history status %d", resp.StatusCode)
	}
	var decoded map[string]*HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, fmt.Errorf("comfy: decode history: %w", err)
	}
	entry, ok := decoded[jobID]
	if !ok || entry == nil {
		return nil, false, nil
	}
	return entry, true, nil
}

// Ping reports whether the worker answers its history endpoint.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("comfy: worker status check failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}
