package config

import (
	"fmt"
	"time"

	"gitlab.com/fog-offload.net/internal/domain"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DispatcherCfg configures the manager process
type DispatcherCfg struct {
	Port                  int
	StalenessThreshold    time.Duration
	Weights               domain.ScoringWeights
	ForwardTimeout        time.Duration
	MaxConcurrentForwards int
	FailoverEnabled       bool
	MaxForwardAttempts    int
	NodesFile             string
	StatusBackend         string
	HealthInterval        time.Duration
}

func NewDispatcherCfg() (*DispatcherCfg, error) {
	weights, err := domain.ScoringPreset(getEnv("SCORING_PRESET", "cpu"))
	if err != nil {
		return nil, err
	}
	if raw := getEnv("SCORING_WEIGHTS", ""); raw != "" {
		if weights, err = domain.ParseScoringWeights(raw); err != nil {
			return nil, err
		}
	}

	cfg := &DispatcherCfg{
		Port:                  getIntEnv("MANAGER_PORT", 6000),
		StalenessThreshold:    getSecondsEnv("STALENESS_THRESHOLD_SEC", 30*time.Second),
		Weights:               weights,
		ForwardTimeout:        getSecondsEnv("FORWARD_TIMEOUT_SEC", 60*time.Second),
		MaxConcurrentForwards: getIntEnv("MAX_CONCURRENT_FORWARDS", 32),
		FailoverEnabled:       getBoolEnv("FAILOVER_ENABLED", false),
		MaxForwardAttempts:    getIntEnv("MAX_FORWARD_ATTEMPTS", 2),
		NodesFile:             getEnv("NODES_FILE", "nodes.yaml"),
		StatusBackend:         getEnv("STATUS_BACKEND", BackendMemory),
		HealthInterval:        getSecondsEnv("REGISTRY_HEALTH_INTERVAL_SEC", 15*time.Second),
	}
	if cfg.MaxConcurrentForwards < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_FORWARDS must be at least 1")
	}
	if cfg.MaxForwardAttempts < 1 {
		cfg.MaxForwardAttempts = 1
	}
	return cfg, nil
}
