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

	"github.com/altlend/decisioning/internal/application/usecase"
	"github.com/altlend/decisioning/internal/domain/port"
	"github.com/altlend/decisioning/internal/domain/service"
	"github.com/altlend/decisioning/internal/infrastructure/adapter"
	"github.com/altlend/decisioning/internal/infrastructure/config"
	"github.com/altlend/decisioning/internal/infrastructure/kafka"
	pgRepo "github.com/altlend/decisioning/internal/infrastructure/postgres"
	"github.com/altlend/decisioning/internal/infrastructure/tasks"
	"github.com/altlend/decisioning/internal/presentation/rest"
	pkgkafka "github.com/altlend/decisioning/pkg/kafka"
	"github.com/altlend/decisioning/pkg/observability"
	pkgpostgres "github.com/altlend/decisioning/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: "json",
	})
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting decisioning service",
		"http_port", cfg.HTTPPort,
		"policy_version", cfg.Policy.Version,
	)

	// Initialize tracing.
	shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdown(ctx) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(ctx) }() //nolint:errcheck

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://internal/infrastructure/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Wire infrastructure adapters. Profiles and vectors always live in
	// PostgreSQL; the raw-event side is selectable.
	pgFeatureStore := pgRepo.NewFeatureStore(pool)
	var featureStore port.FeatureStore = pgFeatureStore
	switch cfg.FeatureSource {
	case config.FeatureSourceStub:
		logger.Warn("using stub feature source, borrower histories are synthetic")
		featureStore = adapter.NewStubFeatureStore()
	case config.FeatureSourceOpenBanking:
		// A nil client selects the simulated sandbox provider.
		source := adapter.NewOpenBankingEventSource(
			nil,
			adapter.StaticTokenProvider(cfg.OpenBanking.AccessToken),
			observability.ComponentLogger(logger, "openbanking"),
		)
		featureStore = adapter.NewOpenBankingFeatureStore(
			pgFeatureStore, pgFeatureStore, source,
			time.Duration(cfg.Features.LookbackDays)*24*time.Hour,
			observability.ComponentLogger(logger, "openbanking"),
		)
	}
	decisionRepo := pgRepo.NewDecisionRepo(pool)
	auditLog := pgRepo.NewAuditLog(pool, observability.ComponentLogger(logger, "audit"))

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := kafka.NewEventPublisher(
		kafkaProducer,
		map[string]string{
			"decisioning.decision.finalized":      cfg.Kafka.DecisionTopic,
			"decisioning.feature_vector.computed": cfg.Kafka.FeatureTopic,
		},
		cfg.Kafka.DecisionTopic,
		observability.ComponentLogger(logger, "kafka"),
	)

	// Wire domain services.
	featureEngine := service.NewFeatureEngine(service.FeatureEngineConfig{
		LookbackWindow: time.Duration(cfg.Features.LookbackDays) * 24 * time.Hour,
		MaxEvents:      cfg.Features.MaxEvents,
	}, observability.ComponentLogger(logger, "features"))

	ensemble := service.NewEnsemble(
		observability.ComponentLogger(logger, "ensemble"),
		service.NewRuleBasedScorer(),
		service.NewTrustNetworkScorer(),
	)

	fraudEngine := service.NewFraudEngine(
		observability.ComponentLogger(logger, "fraud"),
		service.NewVolumeDetector(cfg.Features.MinVolumeFloor),
		service.NewConsistencyDetector(),
	)

	policyEngine := service.NewPolicyEngine(service.PolicyConfig{
		Version:                cfg.Policy.Version,
		ApproveCreditThreshold: cfg.Policy.ApproveCreditThreshold,
		ApproveFraudCeiling:    cfg.Policy.ApproveFraudCeiling,
		RejectFraudThreshold:   cfg.Policy.RejectFraudThreshold,
		RejectCreditFloor:      cfg.Policy.RejectCreditFloor,
	})

	aggregator := service.NewExplanationAggregator(service.DefaultExplainerRegistry())

	// Wire use cases and the background recompute runner.
	recomputeUC := usecase.NewRecomputeFeaturesUseCase(
		featureStore, publisher, featureEngine,
		observability.ComponentLogger(logger, "recompute"),
	)
	runner := tasks.NewRunner(
		cfg.Tasks.QueueSize, cfg.Tasks.Workers,
		recomputeUC.Execute,
		observability.ComponentLogger(logger, "tasks"),
	)
	runner.Start(ctx)
	defer runner.Stop()

	decideUC := usecase.NewDecideUseCase(
		featureStore, decisionRepo, auditLog, publisher, runner,
		featureEngine, ensemble, fraudEngine, policyEngine, aggregator,
		observability.ComponentLogger(logger, "decide"),
	)
	getUC := usecase.NewGetDecisionUseCase(decisionRepo)
	listUC := usecase.NewListDecisionsUseCase(decisionRepo)

	// HTTP server.
	mux := http.NewServeMux()
	rest.NewDecisionHandler(decideUC, getUC, listUC, logger).RegisterRoutes(mux)
	rest.NewHealthHandler(pool, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("decisioning service stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
