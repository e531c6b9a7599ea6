package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("COMFY_HOST", "")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "")
	t.Setenv("GENERATE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ComfyHost != "127.0.0.1" || cfg.ComfyPort != "8188" {
		t.Fatalf("worker address = %s:%s, want 127.0.0.1:8188", cfg.ComfyHost, cfg.ComfyPort)
	}
	if cfg.RateLimitMax != 10 || cfg.RateLimitWindow != time.Minute {
		t.Fatalf("rate limit = (%d, %v), want (10, 1m)", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.GenerateTimeout != 5*time.Minute {
		t.Fatalf("GenerateTimeout = %v, want 5m", cfg.GenerateTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("COMFY_HOST", "comfy.internal")
	t.Setenv("COMFY_PORT", "9000")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "3")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ComfyHost != "comfy.internal" || cfg.ComfyPort != "9000" {
		t.Fatalf("worker address = %s:%s", cfg.ComfyHost, cfg.ComfyPort)
	}
	if cfg.RateLimitMax != 3 || cfg.RateLimitWindow != 10*time.Second {
		t.Fatalf("rate limit = (%d, %v), want (3, 10s)", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %#v", cfg.CORSOrigins)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "ten")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RateLimitMax != 10 {
		t.Fatalf("RateLimitMax = %d, want fallback 10", cfg.RateLimitMax)
	}
}
