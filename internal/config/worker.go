package config

import (
	"fmt"
	"time"

	"gitlab.com/fog-offload.net/internal/domain"
)

// WorkerCfg configures a fog node process
type WorkerCfg struct {
	NodeID         string
	Port           int
	Cost           domain.CostParams
	CacheTTL       time.Duration
	CacheBackend   string
	Fingerprint    domain.FingerprintPolicy
	TimeScale      float64
	MetricsLogFile string
	WriteTimeout   time.Duration
}

func NewWorkerCfg() (*WorkerCfg, error) {
	cost, err := domain.CostPreset(getEnv("COST_PRESET", "queued"))
	if err != nil {
		return nil, err
	}
	cost.QueueDelayPerTask = getFloatEnv("COST_QUEUE_DELAY_PER_TASK", cost.QueueDelayPerTask)
	cost.Bandwidth = getFloatEnv("COST_BANDWIDTH", cost.Bandwidth)
	cost.PropagationDelay = getFloatEnv("COST_PROPAGATION_DELAY", cost.PropagationDelay)
	cost.ProcessingRate = getFloatEnv("COST_PROCESSING_RATE", cost.ProcessingRate)
	cost.EnergyCoefficient = getFloatEnv("COST_ENERGY_COEFFICIENT", cost.EnergyCoefficient)
	if err := cost.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cost model: %w", err)
	}

	nodeID := getEnv("FOG_NODE_NUMBER", "1")
	cfg := &WorkerCfg{
		NodeID:         nodeID,
		Port:           getIntEnv("PORT", 5000),
		Cost:           cost,
		CacheTTL:       getSecondsEnv("CACHE_TTL_SEC", 10*time.Minute),
		CacheBackend:   getEnv("CACHE_BACKEND", BackendMemory),
		Fingerprint:    domain.FingerprintPolicy{IncludeDeadline: getBoolEnv("FINGERPRINT_INCLUDE_DEADLINE", false)},
		TimeScale:      getFloatEnv("TIME_SCALE", 1.0),
		MetricsLogFile: getEnv("METRICS_LOG_FILE", fmt.Sprintf("fog_node_%s_log.csv", nodeID)),
		WriteTimeout:   getSecondsEnv("HTTP_WRITE_TIMEOUT_SEC", 2*time.Minute),
	}
	if cfg.TimeScale < 0 {
		return nil, fmt.Errorf("TIME_SCALE must not be negative")
	}
	return cfg, nil
}

// ReporterCfg configures the periodic status push of a fog node
type ReporterCfg struct {
	ManagerURL      string
	Interval        time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	PushTimeout     time.Duration
	CPUSampleWindow time.Duration
}

func NewReporterCfg() *ReporterCfg {
	cfg := &ReporterCfg{
		ManagerURL:      getEnv("MANAGER_URL", "http://localhost:6000"),
		Interval:        getSecondsEnv("STATUS_INTERVAL_SEC", 10*time.Second),
		MaxRetries:      getIntEnv("STATUS_MAX_RETRIES", 3),
		RetryDelay:      getSecondsEnv("STATUS_RETRY_DELAY_SEC", 5*time.Second),
		PushTimeout:     getSecondsEnv("STATUS_PUSH_TIMEOUT_SEC", 5*time.Second),
		CPUSampleWindow: getSecondsEnv("STATUS_CPU_SAMPLE_SEC", time.Second),
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return cfg
}
