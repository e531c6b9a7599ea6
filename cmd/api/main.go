package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AJ-Gazin/IdenticAI-API/internal/adapter/repo"
	"github.com/AJ-Gazin/IdenticAI-API/internal/comfy"
	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
	"github.com/AJ-Gazin/IdenticAI-API/internal/generate"
	"github.com/AJ-Gazin/IdenticAI-API/internal/http/handlers"
	httpapi "github.com/AJ-Gazin/IdenticAI-API/internal/http/httpapi"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra/geoip"
	"github.com/AJ-Gazin/IdenticAI-API/internal/lora"
	"github.com/AJ-Gazin/IdenticAI-API/internal/ratelimit"
	"github.com/AJ-Gazin/IdenticAI-API/internal/storage"
	"github.com/AJ-Gazin/IdenticAI-API/internal/workflow"
)

// streamDialer bridges the concrete websocket dialer to the orchestrator's
// stream interface.
type streamDialer struct {
	d *comfy.Dialer
}

func (s streamDialer) Dial(ctx context.Context, clientID string) (generate.EventStream, error) {
	conn, err := s.d.Dial(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Generation records are optional; the API runs without a database.
	var records domain.GenerationRepository
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		records = repo.NewGenerationRepository(dbpool)
	}

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	client := comfy.NewClient(comfy.Options{
		Host:   cfg.ComfyHost,
		Port:   cfg.ComfyPort,
		Logger: &logger,
	})
	adapters := lora.NewLibrary(cfg.LoraDir)

	orchestrator := generate.NewOrchestrator(generate.Options{
		Limiter:   ratelimit.NewBucket(cfg.RateLimitMax, cfg.RateLimitWindow),
		Workflows: workflow.NewLoader(cfg.WorkflowDir),
		Binder:    workflow.NewBinder(adapters),
		Worker:    client,
		Dialer:    streamDialer{d: comfy.NewDialer(client, logger)},
		Adapters:  adapters,
		Logger:    logger,
		Timeout:   cfg.GenerateTimeout,
	})

	app := &handlers.App{
		Logger:         logger,
		Generator:      orchestrator,
		Records:        records,
		Store:          store,
		DefaultAdapter: cfg.DefaultLora,
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		Countries:       countries,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
