package config

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	pkgconfig "github.com/junoblue/launch/pkg/config"
	"github.com/junoblue/launch/pkg/database"
	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/pubsub"
	"github.com/junoblue/launch/pkg/storage"
	"github.com/junoblue/launch/tenant-service/internal/stream"
)

type Config struct {
	Server      ServerConfig
	Database    database.Config
	Secret      SecretConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Events      EventsConfig
	Stream      StreamConfig
	Storage     storage.Config
	JWT         JWTConfig
	IDService   IDServiceConfig `mapstructure:"id_service"`
	Environment string
	Log         LogConfig

	v *viper.Viper
}

type ServerConfig struct {
	Host string
	Port int
	// MaxLogoBytes caps logo uploads.
	MaxLogoBytes int64 `mapstructure:"max_logo_bytes"`
}

// SecretConfig points at the Secrets Manager secret holding database
// credentials. An empty ID means the DB_* variables are used as-is.
type SecretConfig struct {
	ID     string
	Region string
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// EventsConfig selects the bus tenant events go to. With the redis driver
// the bus shares the cache connection.
type EventsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	pubsub.Config `mapstructure:",squash"`
}

// StreamConfig controls the owner websocket. It needs events enabled.
type StreamConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	stream.Config  `mapstructure:",squash"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessDuration  time.Duration `mapstructure:"access_duration"`
	RefreshDuration time.Duration `mapstructure:"refresh_duration"`
	Issuer          string        `mapstructure:"issuer"`
}

// IDServiceConfig names the id-service gRPC address. Empty means ids are
// minted in-process.
type IDServiceConfig struct {
	GRPCAddress string        `mapstructure:"grpc_address"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	db := database.DefaultConfig()
	bus := pubsub.DefaultConfig()
	pkgconfig.SetDefaults(v, map[string]any{
		"server.host":                     "0.0.0.0",
		"server.port":                     8091,
		"server.max_logo_bytes":           2 << 20,
		"database.driver":                 db.Driver,
		"database.host":                   "localhost",
		"database.port":                   db.Port,
		"database.user":                   "postgres",
		"database.dbname":                 "tenant_service",
		"database.sslmode":                "disable",
		"database.file_path":              "./data/tenant.db",
		"database.max_idle_conns":         db.MaxIdleConns,
		"database.max_open_conns":         db.MaxOpenConns,
		"database.conn_max_lifetime":      db.ConnMaxLifetime,
		"database.pool_timeout":           db.PoolTimeout,
		"database.log_level":              db.LogLevel,
		"secret.region":                   database.DefaultSecretRegion,
		"redis.address":                   "localhost:6379",
		"redis.db":                        0,
		"cache.enabled":                   true,
		"cache.prefix":                    "tenant",
		"cache.ttl":                       "5m",
		"events.enabled":                  true,
		"events.driver":                   bus.Driver,
		"events.kafka.brokers":            bus.Kafka.Brokers,
		"events.kafka.group_id":           "tenant-service",
		"events.kafka.partitions":         bus.Kafka.Partitions,
		"events.kafka.replication_factor": bus.Kafka.ReplicationFactor,
		"events.kafka.topics":             []string{pubsub.Topic("tenant")},
		"stream.enabled":                  true,
		"stream.ping_interval":            "30s",
		"stream.pong_wait":                "60s",
		"stream.write_wait":               "10s",
		"stream.max_message_size":         512,
		"stream.send_buffer":              64,
		"storage.type":                    storage.TypeLocal,
		"storage.local.base_path":         "./data/assets",
		"storage.local.base_url":          "/assets",
		"storage.s3.region":               "us-west-2",
		"jwt.access_duration":             "15m",
		"jwt.refresh_duration":            "168h",
		"jwt.issuer":                      "launch-tenant-service",
		"id_service.timeout":              "2s",
		"environment":                     "production",
		"log.level":                       "info",
	})

	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":             "PORT",
		"database.driver":         "DB_DRIVER",
		"database.host":           "DB_HOST",
		"database.port":           "DB_PORT",
		"database.user":           "DB_USER",
		"database.password":       "DB_PASSWORD",
		"database.dbname":         "DB_NAME",
		"database.sslmode":        "DB_SSLMODE",
		"database.file_path":      "DB_FILE_PATH",
		"secret.id":               "DB_SECRET_ID",
		"secret.region":           "AWS_REGION",
		"redis.address":           "REDIS_ADDRESS",
		"redis.password":          "REDIS_PASSWORD",
		"cache.enabled":           "CACHE_ENABLED",
		"events.enabled":          "EVENTS_ENABLED",
		"events.driver":           "EVENTS_DRIVER",
		"events.kafka.brokers":    "KAFKA_BROKERS",
		"stream.enabled":          "STREAM_ENABLED",
		"stream.allowed_origins":  "STREAM_ALLOWED_ORIGINS",
		"storage.type":            "STORAGE_TYPE",
		"storage.local.base_path": "STORAGE_LOCAL_PATH",
		"storage.local.base_url":  "STORAGE_BASE_URL",
		"storage.s3.bucket":       "S3_BUCKET",
		"storage.s3.endpoint":     "S3_ENDPOINT",
		"storage.s3.public_url":   "S3_PUBLIC_URL",
		"jwt.secret":              "JWT_SECRET",
		"id_service.grpc_address": "ID_SERVICE_GRPC",
		"environment":             "APP_ENV",
		"log.level":               "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.v = v
	return &cfg, nil
}

// Watch calls onChange with the re-decoded config each time the config
// file changes. Only settings read after startup, such as the log level,
// take effect. It reports whether a file is being watched.
func (c *Config) Watch(onChange func(*Config)) bool {
	if c.v == nil {
		return false
	}
	return pkgconfig.Watch(c.v, func(e fsnotify.Event) {
		next, err := decode(c.v)
		if err != nil {
			l := log.L()
			l.Warn().Err(err).Str("file", e.Name).Msg("ignoring invalid config change")
			return
		}
		onChange(next)
	})
}
