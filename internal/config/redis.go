package config

import "time"

type RedisConfig struct {
	DB                int
	Url               string
	Password          string
	ConnectRetries    int
	ConnectRetryDelay time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:                getIntEnv("REDIS_DB", 0),
		Url:               getEnv("REDIS_ADDR", "localhost:6379"),
		Password:          getEnv("REDIS_PASSWORD", ""),
		ConnectRetries:    getIntEnv("REDIS_CONNECT_RETRIES", 5),
		ConnectRetryDelay: getSecondsEnv("REDIS_CONNECT_RETRY_DELAY_SEC", 5*time.Second),
	}
}
