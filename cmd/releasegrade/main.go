package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shapedtime/releasegrade/internal/api"
	"github.com/shapedtime/releasegrade/internal/config"
	"github.com/shapedtime/releasegrade/internal/feedback"
	"github.com/shapedtime/releasegrade/internal/metrics"
	"github.com/shapedtime/releasegrade/internal/model"
	"github.com/shapedtime/releasegrade/internal/quality"
	"github.com/shapedtime/releasegrade/internal/service"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting releasegrade", "config", *configPath)

	// Ensure required directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("Failed to create directories", "error", err)
		os.Exit(1)
	}

	scoring, err := quality.NewScoringConfig(cfg.Scoring)
	if err != nil {
		slog.Error("Invalid scoring configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	dsn := cfg.Database.Path
	if cfg.Database.Driver == feedback.DriverPostgres {
		dsn = cfg.Database.URL
	}
	db, err := feedback.NewDB(cfg.Database.Driver, dsn)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database initialized", "driver", db.Driver())

	feedbackRepo := feedback.NewRepository(db)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	predictor := service.NewPredictor(scoring, m)
	reg.MustRegister(metrics.NewFeedbackCollector(feedbackRepo, predictor))

	// Optional trained classifier
	var trainer *service.Trainer
	if cfg.Model.Enabled {
		store, err := model.OpenStore(cfg.Model.Path, time.Duration(cfg.Model.TTL)*time.Second)
		if err != nil {
			slog.Error("Failed to open model store", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		trainer = service.NewTrainer(service.TrainerConfig{
			RetrainEvery:     cfg.Model.RetrainEvery,
			MinFeedback:      cfg.Model.MinFeedback,
			SyntheticSamples: cfg.Model.SyntheticSamples,
			Seed:             cfg.Model.Seed,
		}, feedbackRepo, store, predictor, m)

		if err := trainer.LoadOrTrain(); err != nil {
			slog.Warn("Model unavailable, using rule-based scoring", "error", err)
		}
	} else {
		slog.Info("Trained model disabled, using rule-based scoring")
	}

	apiServer := api.NewServer(predictor, feedbackRepo, trainer, m)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting REST API server", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("REST API server error", "error", err)
		}
	}()

	var metricsServer *metrics.Server
	if cfg.Server.MetricsPort > 0 {
		metricsServer = metrics.NewServer(cfg.Server.MetricsPort, reg)
		go metricsServer.Start()
	}

	slog.Info("releasegrade is ready",
		"api_url", fmt.Sprintf("http://localhost:%d/api", cfg.Server.HTTPPort),
		"model_loaded", predictor.ModelLoaded(),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig)

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("REST API server shutdown error", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}
	if trainer != nil {
		trainer.Wait()
	}

	slog.Info("releasegrade stopped")
}
