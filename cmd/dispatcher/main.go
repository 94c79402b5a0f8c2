package main

import (
	"context"
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
	"gitlab.com/fog-offload.net/internal/adapter/redis/statusport"
	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/core/services/dispatch"
	"gitlab.com/fog-offload.net/internal/core/services/registry"
	"gitlab.com/fog-offload.net/internal/core/services/selector"
	"gitlab.com/fog-offload.net/internal/handlers"
	"gitlab.com/fog-offload.net/internal/handlers/offload"
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
	logger := logging.NewZapLoggerWithLevel(sysCfg.Level())
	defer logger.Sync()
	logger.Info("Starting fog manager")

	dispatcherCfg, err := config.NewDispatcherCfg()
	if err != nil {
		logger.Error("Invalid dispatcher configuration", "error", err)
		os.Exit(1)
	}
	nodes, err := config.LoadNodeDirectory(dispatcherCfg.NodesFile)
	if err != nil {
		logger.Error("Failed to load node directory", "file", dispatcherCfg.NodesFile, "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded node directory", "nodes", len(nodes), "weights", dispatcherCfg.Weights)

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SECONDARY PORTS
	var statusRepo secondary.StatusRepository
	switch dispatcherCfg.StatusBackend {
	case config.BackendRedis:
		redisClient, err := redisclient.Connect(ctx, sysCfg.RedisConfig, logger)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		statusRepo = statusport.NewStatusRepository(redisClient, logger)
	default:
		statusRepo = memory.NewStatusStore()
	}

	dispatchLog, err := auditlog.OpenDispatchLog(sysCfg.AuditCfg.LogFile)
	if err != nil {
		logger.Error("Failed to open dispatch log", "error", err)
		os.Exit(1)
	}
	defer dispatchLog.Close()
	sinks := auditlog.DispatchTee{dispatchLog}

	var auditLister offload.AuditLister
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
		auditLister = auditRepo
	}

	//services
	dispatcherMetrics := metrics.NewDispatcherMetrics()
	statusRegistry := registry.NewStatusRegistry(statusRepo, nodes, dispatcherCfg.StalenessThreshold, logger)
	nodeSelector := selector.NewNodeSelector(dispatcherCfg.Weights, logger)
	forwardClient := httpclient.NewHTTPClient(dispatcherCfg.ForwardTimeout, dispatcherCfg.MaxConcurrentForwards)
	dispatchSvc := dispatch.NewDispatchService(
		dispatcherCfg,
		statusRegistry,
		nodeSelector,
		nodes,
		httpclient.NewWorkerClient(forwardClient),
		sinks,
		dispatcherMetrics,
		logger,
	)

	engine := schedulerengine.NewSchedulerEngine(logger).
		Every("registry-health", dispatcherCfg.HealthInterval, dispatchSvc.RefreshGauges, true)

	validator, err := validation.NewValidator()
	if err != nil {
		logger.Error("Failed to compile schemas", "error", err)
		os.Exit(1)
	}

	//server
	writeTimeout := dispatcherCfg.ForwardTimeout*time.Duration(dispatcherCfg.MaxForwardAttempts) + 15*time.Second
	promRegistry := metrics.NewRegistry(append(dispatcherMetrics.Collectors(), metrics.RuntimeCollectors()...)...)
	httpServer := http2.NewServer(dispatcherCfg.Port, "manager", writeTimeout, logger)
	err = httpServer.Init(metrics.Handler(promRegistry),
		func(ctx context.Context) map[string]interface{} {
			fresh, err := statusRegistry.Eligible(ctx, time.Now())
			if err != nil {
				return map[string]interface{}{"registry_error": err.Error()}
			}
			return map[string]interface{}{"fresh_nodes": len(fresh), "known_nodes": len(nodes)}
		},
		func(r *mux.Router) {
			handlers.NewStatusHandler(statusRegistry, dispatchSvc, validator, dispatcherMetrics, logger).RegisterRoutes(r)
			offload.NewOffloadHandler(dispatchSvc, validator, auditLister, logger).RegisterRoutes(r)
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
	logger.Info("Shutting down server...")

	engine.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("successfully shutdown server")
}
