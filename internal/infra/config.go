package infra

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	ComfyHost        string
	ComfyPort        string
	WorkflowDir      string
	LoraDir          string
	OutputDir        string
	DefaultLora      string
	DatabaseURL      string
	GeoIPDBPath      string
	CORSOrigins      []string
	RateLimitMax     int
	RateLimitWindow  time.Duration
	GenerateTimeout  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL and GEOIP_DB_PATH are optional; the
// features behind them stay off when unset.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		ComfyHost:        getEnv("COMFY_HOST", "127.0.0.1"),
		ComfyPort:        getEnv("COMFY_PORT", "8188"),
		WorkflowDir:      getEnv("WORKFLOW_DIR", "/workflows"),
		LoraDir:          getEnv("LORA_DIR", "/ComfyUI/models/loras"),
		OutputDir:        getEnv("OUTPUT_DIR", "/ComfyUI/output"),
		DefaultLora:      getEnv("DEFAULT_LORA", "steampunk.safetensors"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10),
		RateLimitWindow:  time.Second * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)),
		GenerateTimeout:  time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 300)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 330)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
