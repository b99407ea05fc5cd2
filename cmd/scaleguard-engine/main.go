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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/scaleguardhq/scaleguard-engine/internal/analyzer"
	"github.com/scaleguardhq/scaleguard-engine/internal/config"
	"github.com/scaleguardhq/scaleguard-engine/internal/engine"
	"github.com/scaleguardhq/scaleguard-engine/internal/history"
	"github.com/scaleguardhq/scaleguard-engine/internal/ingest"
	"github.com/scaleguardhq/scaleguard-engine/internal/metrics"
	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/narrative"
	"github.com/scaleguardhq/scaleguard-engine/internal/predictor"
	"github.com/scaleguardhq/scaleguard-engine/internal/publish"
	"github.com/scaleguardhq/scaleguard-engine/internal/remediation"
	"github.com/scaleguardhq/scaleguard-engine/internal/simulator"
	"github.com/scaleguardhq/scaleguard-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting scaleguard-engine",
		slog.String("topology_source", cfg.Topology.Source),
		slog.Duration("interval", cfg.Simulation.Interval))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topo, err := loadTopology(ctx, cfg)
	if err != nil {
		logger.Error("failed to load topology", slog.Any("error", err))
		os.Exit(1)
	}

	sim := simulator.New(logger)
	if err := sim.Build(topo.Nodes, topo.Edges); err != nil {
		logger.Error("failed to build topology graph", slog.Any("error", err))
		os.Exit(1)
	}

	remediator := remediation.New(logger,
		remediation.WithDryRun(cfg.Remediation.DryRun),
		remediation.WithExecutionDelay(cfg.Remediation.ExecutionDelay),
	)
	if cfg.Remediation.RulesPath != "" {
		if err := remediator.LoadRulesFile(cfg.Remediation.RulesPath); err != nil {
			logger.Error("failed to load rule pack", slog.Any("error", err))
			os.Exit(1)
		}
	}

	narratives := narrative.NewManager(logger)
	if cfg.Narrative.Provider == "openai" {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Warn("narrative provider openai selected but OPENAI_API_KEY is empty, staying on template")
		} else {
			narratives.Register(narrative.NewOpenAIProvider(apiKey, cfg.Narrative.Model, cfg.Narrative.Timeout))
			if err := narratives.Switch("openai"); err != nil {
				logger.Warn("narrative provider switch failed", slog.Any("error", err))
			}
		}
	}

	var publisher publish.Publisher = publish.NoopPublisher{}
	if cfg.Publish.Enabled && cfg.Publish.Addr != "" {
		redisPublisher, err := publish.NewRedisPublisher(ctx, publish.RedisConfig{
			Addr:        cfg.Publish.Addr,
			Username:    cfg.Publish.Username,
			Password:    cfg.Publish.Password,
			DB:          cfg.Publish.DB,
			TTL:         cfg.Publish.TTL,
			DialTimeout: cfg.Publish.DialTimeout,
		}, logger)
		if err != nil {
			logger.Warn("redis publisher unavailable", slog.Any("error", err))
		} else {
			publisher = redisPublisher
			defer redisPublisher.Close()
		}
	}

	eng := engine.New(
		sim,
		analyzer.New(logger),
		history.NewTracker(cfg.Simulation.RetentionHours),
		predictor.New(logger),
		remediator,
		narratives,
		publisher,
		cfg.Simulation.GrowthFactor,
		logger,
	)

	runCycle := func() {
		if _, err := eng.RunCycle(ctx); err != nil {
			logger.Error("cycle failed", slog.Any("error", err))
		}
	}
	runCycle()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.Simulation.Interval), runCycle); err != nil {
		logger.Error("failed to schedule cycles", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	cronCtx := scheduler.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(cfg.Server.GracefulTimeout):
		logger.Warn("timed out waiting for running cycle")
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("scaleguard-engine stopped")
}

func loadTopology(ctx context.Context, cfg *config.Config) (models.Topology, error) {
	switch cfg.Topology.Source {
	case "file":
		return ingest.LoadFile(cfg.Topology.Path)
	case "http":
		client := ingest.NewClient(cfg.Topology.BaseURL, cfg.Topology.TopologyPath, cfg.Topology.FetchTimeout)
		return client.FetchTopology(ctx)
	default:
		return ingest.Demo(), nil
	}
}
