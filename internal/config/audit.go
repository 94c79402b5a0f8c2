package config

// AuditCfg locates the manager's append-only action log
type AuditCfg struct {
	LogFile string
}

func NewAuditCfg() *AuditCfg {
	return &AuditCfg{
		LogFile: getEnv("MANAGER_LOG_FILE", "manager_log.json"),
	}
}
