package config

// PostgresConfig points at the audit database. An empty Url disables it.
type PostgresConfig struct {
	Url    string
	Schema string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Url:    getEnv("DATABASE_URL", ""),
		Schema: getEnv("DATABASE_SCHEMA", "public"),
	}
}

func (c *PostgresConfig) Enabled() bool {
	return c.Url != ""
}
