package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"

	"github.com/tanagerlabs/birdtag/pkg/birdtag/api"
	"github.com/tanagerlabs/birdtag/pkg/birdtag/config"
	"github.com/tanagerlabs/birdtag/pkg/birdtag/detect"
	"github.com/tanagerlabs/birdtag/pkg/birdtag/ingest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	svc, err := cfg.BuildService()
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	logger := httplog.NewLogger("birdtag", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  cfg.Environment != "development",
	})

	// Model backends (visual detector, tracker, audio classifier) are
	// wired per deployment; without them the suite records files with
	// empty tag maps.
	suite := detect.NewSuite(detect.SuiteConfig{
		Frames: detect.StillOpener{},
		Logger: logger.Logger,
	})

	processor, err := ingest.NewProcessor(ingest.Config{
		Service:        svc,
		Detector:       suite,
		ResultStore:    cfg.Storage.ResultBucket,
		ThumbnailStore: cfg.Storage.ThumbnailBucket,
		Logger:         logger.Logger,
	})
	if err != nil {
		slog.Error("Failed to build ingest processor", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(logger))
	r.Use(api.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	signingKey := []byte(cfg.JWTSigningKey)
	media := api.NewMediaHandler(svc, logger.Logger)
	events := api.NewIngestHandler(processor, logger.Logger)
	r.Mount("/ingest", api.Protect(signingKey, events.Routes()))
	r.Mount("/", api.Protect(signingKey, media.Routes()))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		slog.Info("BirdTag server starting", "port", cfg.Port, "env", cfg.Environment,
			"database", cfg.Database.Type, "storage", cfg.Storage.Type)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}
