package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/fog-offload.net/internal/adapter/auditlog"
	"gitlab.com/fog-offload.net/internal/adapter/httpclient"
	"gitlab.com/fog-offload.net/internal/adapter/logging"
	"gitlab.com/fog-offload.net/internal/adapter/memory"
	"gitlab.com/fog-offload.net/internal/adapter/postgres"
	"gitlab.com/fog-offload.net/internal/adapter/postgres/auditrepository"
	"gitlab.com/fog-offload.net/internal/adapter/redis/redisclient"
	"gitlab.com/fog-offload.net/internal/adapter/redis/resultcache"
	"gitlab.com/fog-offload.net/internal/adapter/sampler"
	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/core/services/costmodel"
	"gitlab.com/fog-offload.net/internal/core/services/execution"
	"gitlab.com/fog-offload.net/internal/core/services/reporter"
	"gitlab.com/fog-offload.net/internal/handlers/workers"
	http2 "gitlab.com/fog-offload.net/internal/http"
	"gitlab.com/fog-offload.net/internal/metrics"
	"gitlab.com/fog-offload.net/internal/schedulerengine"
	"gitlab.com/fog-offload.net/internal/validation"
)

func main() {
	if err := config.InitReader(os.Args); err != nil {
		log.Fatal(err)
	}

	sysCfg := config.NewSystemConfig()
	baseLogger := logging.NewZapLoggerWithLevel(sysCfg.Level())
	defer baseLogger.Sync()

	workerCfg, err := config.NewWorkerCfg()
	if err != nil {
		baseLogger.Error("Invalid worker configuration", "error", err)
		os.Exit(1)
	}
	reporterCfg := config.NewReporterCfg()
	logger := baseLogger.With("nodeId", workerCfg.NodeID)
	logger.Info("Starting fog node", "port", workerCfg.Port, "cacheBackend", workerCfg.CacheBackend)

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SECONDARY PORTS
	var cache secondary.ResultCache
	var memCache *memory.ResultCache
	switch workerCfg.CacheBackend {
	case config.BackendRedis:
		redisClient, err := redisclient.Connect(ctx, sysCfg.RedisConfig, logger)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		cache = resultcache.NewResultCache(redisClient, logger)
	default:
		memCache = memory.NewResultCache()
		cache = memCache
	}

	csvLog, err := auditlog.OpenMetricsLog(workerCfg.MetricsLogFile)
	if err != nil {
		logger.Error("Failed to open metrics log", "error", err)
		os.Exit(1)
	}
	defer csvLog.Close()
	sinks := auditlog.MetricsTee{csvLog}

	if sysCfg.PostgresConfig.Enabled() {
		db, err := postgres.Open(ctx, sysCfg.PostgresConfig)
		if err != nil {
			logger.Error("Failed to set up database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		auditRepo := auditrepository.NewAuditRepository(db, sysCfg.PostgresConfig.Schema, logger)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to create audit tables", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, auditRepo)
	}

	//services
	workerMetrics := metrics.NewWorkerMetrics()
	hostSampler := sampler.NewHostSampler(reporterCfg.CPUSampleWindow)
	executionSvc := execution.NewExecutionService(
		workerCfg.NodeID,
		cache,
		costmodel.New(workerCfg.Cost),
		hostSampler.Instant(),
		sinks,
		workerMetrics,
		logger,
		execution.Options{
			CacheTTL:    workerCfg.CacheTTL,
			Fingerprint: workerCfg.Fingerprint,
			TimeScale:   workerCfg.TimeScale,
		},
	)

	statusReporter := reporter.NewStatusReporter(
		workerCfg.NodeID,
		workerCfg.Port,
		reporterCfg,
		hostSampler,
		executionSvc,
		httpclient.NewStatusClient(reporterCfg.ManagerURL, httpclient.NewHTTPClient(reporterCfg.PushTimeout, 2)),
		workerMetrics,
		logger,
	)

	engine := schedulerengine.NewSchedulerEngine(logger).
		Every("status-report", reporterCfg.Interval, statusReporter.Run, true)
	if memCache != nil {
		engine.Every("cache-sweep", workerCfg.CacheTTL, func(context.Context) {
			if n := memCache.Sweep(); n > 0 {
				logger.Debug("Swept expired cache entries", "count", n)
			}
		}, false)
	}

	validator, err := validation.NewValidator()
	if err != nil {
		logger.Error("Failed to compile schemas", "error", err)
		os.Exit(1)
	}

	//server
	registry := metrics.NewRegistry(append(workerMetrics.Collectors(), metrics.RuntimeCollectors()...)...)
	httpServer := http2.NewServer(workerCfg.Port, fmt.Sprintf("fog-node-%s", workerCfg.NodeID), workerCfg.WriteTimeout, logger)
	err = httpServer.Init(metrics.Handler(registry),
		func(context.Context) map[string]interface{} {
			return map[string]interface{}{"node_id": workerCfg.NodeID, "queue_length": executionSvc.InFlight()}
		},
		func(r *mux.Router) {
			workers.NewHandler(workerCfg.NodeID, executionSvc, validator, logger).Register(r)
		},
	)
	if err != nil {
		panic(err)
	}

	serverErr := httpServer.Start()
	engine.Start(ctx)

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", "error", err)
		}
	}
	logger.Info("Shutting down fog node...")

	engine.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("successfully shutdown fog node")
}
