package config

import (
	"time"

	"github.com/junoblue/launch/health-check/internal/certs"
	pkgconfig "github.com/junoblue/launch/pkg/config"
)

type Config struct {
	Server      ServerConfig
	TLS         TLSConfig
	Instance    InstanceConfig
	Environment string
	Log         LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type TLSConfig struct {
	CertPath string `mapstructure:"cert_path"`
	KeyPath  string `mapstructure:"key_path"`
}

// InstanceConfig controls the EC2 metadata lookup for the report.
type InstanceConfig struct {
	Enabled bool
	Timeout time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "health-check")
	if err != nil {
		return nil, err
	}

	pkgconfig.SetDefaults(v, map[string]any{
		"server.host":      "0.0.0.0",
		"server.port":      443,
		"tls.cert_path":    certs.DefaultCertPath,
		"tls.key_path":     certs.DefaultKeyPath,
		"instance.enabled": true,
		"instance.timeout": 2 * time.Second,
		"environment":      "production",
		"log.level":        "info",
	})

	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":      "PORT",
		"tls.cert_path":    "TLS_CERT_PATH",
		"tls.key_path":     "TLS_KEY_PATH",
		"instance.enabled": "INSTANCE_METADATA",
		"environment":      "APP_ENV",
		"log.level":        "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
