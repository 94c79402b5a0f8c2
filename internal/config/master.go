package config

import "os"

// AppConfig gathers every concern. Each process reads the parts it needs.
type AppConfig struct {
	DebugMode      bool
	LogLevel       string
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	AuditCfg       *AuditCfg
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		AuditCfg:       NewAuditCfg(),
	}
}

// Level is the effective log level, debug when DebugMode is on
func (c *AppConfig) Level() string {
	if c.DebugMode {
		return "debug"
	}
	return c.LogLevel
}
