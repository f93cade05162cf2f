// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"social-insights/internal/analytics/engagement"
	"social-insights/internal/analytics/entities"
	"social-insights/internal/analytics/kol"
	"social-insights/internal/analytics/network"
	"social-insights/internal/analytics/sentiment"
	awsclient "social-insights/internal/common/aws"
	"social-insights/internal/common/camunda"
	"social-insights/internal/common/config"
	"social-insights/internal/common/database"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/observability"
	"social-insights/internal/common/validation"
	"social-insights/internal/models"
	"social-insights/internal/orchestrator"
	"social-insights/internal/store"
	"social-insights/pkg/registry"

	ac "social-insights/internal/workers/analytics/analyze-company"
	ik "social-insights/internal/workers/analytics/identify-kols"
	ni "social-insights/internal/workers/communication/notify-insights"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := store.Migrate(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stores ---
	interactions := store.NewPostgresInteractionStore(pg.DB, log)
	results := store.NewPostgresResultStore(pg.DB, log)
	snapshots := store.NewRedisSnapshotStore(rdb.Client, time.Duration(cfg.Database.Redis.SnapshotTTL)*24*time.Hour)

	var mentions orchestrator.MentionStore = interactions
	if cfg.Analytics.MentionSource == "elasticsearch" {
		mentions = store.NewElasticMentionStore(esClient.Client, cfg.Database.Elasticsearch.MentionsIndex)
	}

	// --- Analyzers ---
	a := cfg.Analytics
	location, err := time.LoadLocation(a.Timezone)
	if err != nil {
		zapLog.Fatal("invalid analytics timezone", zap.Error(err))
	}

	backend, err := network.NewAnalytics(a.GraphBackend)
	if err != nil {
		zapLog.Fatal("graph backend", zap.Error(err))
	}

	deps := orchestrator.Dependencies{
		Interactions: interactions,
		Mentions:     mentions,
		Authors:      store.NewPostgresAuthorDirectory(pg.DB),
		Results:      results,
		Snapshots:    snapshots,
		Reports:      store.NewElasticReportIndexer(esClient.Client, cfg.Database.Elasticsearch.ReportsIndex),
		Network: network.NewRanker(network.Config{
			MinInteractions:      a.MinInteractions,
			BetweennessNodeLimit: a.BetweennessNodeLimit,
			TopInfluencers:       a.TopInfluencers,
			MaxFlowDepth:         a.MaxFlowDepth,
		}, backend, log),
		Engagement: engagement.NewAnalyzer(engagement.Config{
			ViralFloor:      a.ViralFloor,
			ViralMultiplier: a.ViralMultiplier,
			Location:        location,
		}, log),
		KOL: kol.NewIdentifier(kol.Config{
			MinFollowers: a.MinFollowers,
			Threshold:    a.KOLThreshold,
			Keywords:     a.ExpertiseKeywords,
		}, log, kol.WithSnapshots(snapshots)),
	}

	if svc := a.Sentiment; svc.BaseURL != "" {
		classifier := sentiment.NewHTTPClassifier(svc.BaseURL, svc.APIKey, config.GetDuration(svc.Timeout))
		deps.Sentiment = sentiment.NewAggregator(classifier, svc.Concurrency, log)
	} else {
		zapLog.Warn("sentiment service not configured, dimension will report DIMENSION_NOT_CONFIGURED")
	}
	if svc := a.Entities; svc.BaseURL != "" {
		extractor := entities.NewHTTPExtractor(svc.BaseURL, svc.APIKey, config.GetDuration(svc.Timeout))
		deps.Entities = entities.NewSummarizer(extractor, entities.DefaultTopN, svc.Concurrency, log)
	} else {
		zapLog.Warn("entity service not configured, dimension will report DIMENSION_NOT_CONFIGURED")
	}

	engine := orchestrator.New(orchestrator.Config{
		RunTimeout:         config.GetDuration(a.RunTimeout),
		PersistTimeout:     config.GetDuration(a.PersistTimeout),
		RisingLookbackDays: a.RisingLookbackDays,
	}, deps, log,
		orchestrator.WithObservability(obs),
		orchestrator.WithStatusObserver(func(runID string, status models.RunStatus) {
			zapLog.Debug("run status", zap.String("runId", runID), zap.String("status", string(status)))
		}),
	)

	// --- Input validation ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, log))
	}

	acCfg := ac.LoadConfig()
	acCfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, ac.TaskType).Timeout)
	start(ac.TaskType, ac.NewHandler(acCfg, engine, validator, log))

	ikCfg := ik.LoadConfig()
	ikCfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, ik.TaskType).Timeout)
	start(ik.TaskType, ik.NewHandler(ikCfg, engine, validator, log))

	if config.IsWorkerEnabled(cfg, ni.TaskType) {
		niCfg := ni.FromAppConfig(cfg)
		if !cfg.Integrations.AWS.SES.Enabled {
			zapLog.Warn("notify-insights needs integrations.aws.ses.enabled, worker not started")
		} else if err := niCfg.Validate(); err != nil {
			zapLog.Fatal("notify-insights config", zap.Error(err))
		} else {
			awsCfg, err := awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("aws config load failed", zap.Error(err))
			}
			niDeps := ni.Dependencies{Results: results, Email: awsclient.NewSESClient(awsCfg)}
			if cfg.Integrations.AWS.SNS.Enabled {
				niDeps.Alerts = awsclient.NewSNSClient(awsCfg)
			}
			start(ni.TaskType, ni.NewHandler(niCfg, niDeps, validator, log))
		}
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		rctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		checks := []struct {
			name string
			fn   func(context.Context) error
		}{
			{"zeebe", zeebe.HealthCheck},
			{"postgres", pg.Ping},
			{"elasticsearch", esClient.Ping},
			{"redis", rdb.Ping},
		}
		for _, c := range checks {
			if err := c.fn(rctx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "not ready", fmt.Sprintf("%s: %v", c.name, err))
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down metrics provider", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		body["reason"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
