package comfy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/AJ-Gazin/IdenticAI-API/internal/workflow"
)

func clientFor(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(Options{Host: u.Hostname(), Port: u.Port(), HTTPClient: srv.Client()})
}

func TestSubmitJob(t *testing.T) {
	var gotBody map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/prompt" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode submit body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"prompt_id": "job-42"})
	}))
	defer srv.Close()

	graph := workflow.Graph{"1": {ClassType: "CLIPTextEncode", Inputs: map[string]any{"text": "a castle"}}}
	jobID, err := clientFor(t, srv).SubmitJob(context.Background(), graph, "client-1")
	if err != nil {
		t.Fatalf("SubmitJob() error = %v", err)
	}
	if jobID != "job-42" {
		t.Fatalf("SubmitJob() = %q, want job-42", jobID)
	}
	if _, ok := gotBody["prompt"]; !ok {
		t.Fatal("submit body missing prompt graph")
	}
	var clientID string
	if err := json.Unmarshal(gotBody["client_id"], &clientID); err != nil || clientID != "client-1" {
		t.Fatalf("submit body client_id = %q, want client-1", clientID)
	}
}

func TestSubmitJobWorkerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid prompt"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := clientFor(t, srv).SubmitJob(context.Background(), workflow.Graph{}, "client-1")
	if err == nil {
		t.Fatal("SubmitJob() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("SubmitJob() error = %v, want status 400 mention", err)
	}
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/history/job-42":
			_, _ = w.Write([]byte(`{"job-42":{"outputs":{"9":{"images":[{"filename":"flux_0001.png","type":"output"}]}}}}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()
	client := clientFor(t, srv)

	entry, ok, err := client.History(context.Background(), "job-42")
	if err != nil || !ok {
		t.Fatalf("History(job-42) = (%v, %v, %v), want entry", entry, ok, err)
	}
	artifact, found := entry.FirstArtifact()
	if !found || artifact != "flux_0001.png" {
		t.Fatalf("FirstArtifact() = (%q, %v), want flux_0001.png", artifact, found)
	}

	// Ids never submitted come back empty, not as an error.
	entry, ok, err = client.History(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("History(unknown) error = %v, want nil", err)
	}
	if ok || entry != nil {
		t.Fatalf("History(unknown) = (%v, %v), want absent", entry, ok)
	}
}

func TestFirstArtifactScansSortedNodeIDs(t *testing.T) {
	entry := &HistoryEntry{Outputs: map[string]NodeOutput{
		"9": {Images: []ImageRef{{Filename: "late.png"}}},
		"2": {Images: []ImageRef{{Filename: "early.png"}}},
		"5": {},
	}}
	artifact, found := entry.FirstArtifact()
	if !found || artifact != "early.png" {
		t.Fatalf("FirstArtifact() = (%q, %v), want early.png", artifact, found)
	}

	var empty *HistoryEntry
	if _, found := empty.FirstArtifact(); found {
		t.Fatal("FirstArtifact() on nil entry reported a result")
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if !clientFor(t, srv).Ping(context.Background()) {
		t.Fatal("Ping() = false, want true")
	}

	srv.Close()
	if clientFor(t, srv).Ping(context.Background()) {
		t.Fatal("Ping() against closed server = true, want false")
	}
}
