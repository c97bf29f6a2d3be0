package config

import (
	"time"

	pkgconfig "github.com/junoblue/launch/pkg/config"
	"github.com/junoblue/launch/pkg/database"
)

type Config struct {
	Database database.Config
	Secret   SecretConfig
	Log      LogConfig
	Timeout  time.Duration
}

// SecretConfig points at the Secrets Manager secret holding credentials.
// An empty ID means the DB_* variables are used as-is.
type SecretConfig struct {
	ID     string
	Region string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "db-check")
	if err != nil {
		return nil, err
	}

	def := database.DefaultConfig()
	pkgconfig.SetDefaults(v, map[string]any{
		"database.driver":            def.Driver,
		"database.host":              "localhost",
		"database.port":              def.Port,
		"database.dbname":            def.DBName,
		"database.sslmode":           def.SSLMode,
		"database.max_idle_conns":    def.MaxIdleConns,
		"database.max_open_conns":    def.MaxOpenConns,
		"database.conn_max_lifetime": def.ConnMaxLifetime,
		"database.pool_timeout":      def.PoolTimeout,
		"database.log_level":         "silent",
		"secret.region":              database.DefaultSecretRegion,
		"log.level":                  "info",
		"log.pretty":                 true,
		"timeout":                    time.Minute,
	})

	if err := pkgconfig.BindEnvs(v, map[string]string{
		"database.driver":    "DB_DRIVER",
		"database.host":      "DB_HOST",
		"database.port":      "DB_PORT",
		"database.user":      "DB_USER",
		"database.password":  "DB_PASSWORD",
		"database.dbname":    "DB_NAME",
		"database.sslmode":   "DB_SSLMODE",
		"database.file_path": "DB_FILE_PATH",
		"secret.id":          "DB_SECRET_ID",
		"secret.region":      "AWS_REGION",
		"log.level":          "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
