package config

import "time"

// ProducerCfg configures the IoT task producer
type ProducerCfg struct {
	ManagerURL     string
	Quota          int
	QuotaWindow    time.Duration
	MeanWait       float64
	RequestTimeout time.Duration
	Seed           int64
	MaxTasks       int
}

func NewProducerCfg() *ProducerCfg {
	cfg := &ProducerCfg{
		ManagerURL:     getEnv("MANAGER_URL", "http://localhost:6000"),
		Quota:          getIntEnv("TASK_QUOTA", 5),
		QuotaWindow:    getSecondsEnv("TASK_QUOTA_WINDOW_SEC", time.Minute),
		MeanWait:       getFloatEnv("MEAN_WAIT_SEC", 5),
		RequestTimeout: getSecondsEnv("REQUEST_TIMEOUT_SEC", 90*time.Second),
		Seed:           int64(getIntEnv("PRODUCER_SEED", 0)),
		MaxTasks:       getIntEnv("MAX_TASKS", 0),
	}
	if cfg.Quota < 1 {
		cfg.Quota = 1
	}
	return cfg
}
