package config

import (
	"github.com/junoblue/launch/id-service/internal/generator"
	pkgconfig "github.com/junoblue/launch/pkg/config"
)

type Config struct {
	Server      ServerConfig
	GRPC        GRPCConfig
	Format      FormatConfig
	Snowflake   SnowflakeConfig
	NanoID      NanoIDConfig `mapstructure:"nanoid"`
	CUID2       CUID2Config  `mapstructure:"cuid2"`
	Environment string
	Log         LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type GRPCConfig struct {
	Host string
	Port int
}

type FormatConfig struct {
	Default string
}

type SnowflakeConfig struct {
	MachineID int64 `mapstructure:"machine_id"`
	Epoch     int64
}

type NanoIDConfig struct {
	Size     int    `mapstructure:"size"`
	Alphabet string `mapstructure:"alphabet"`
}

type CUID2Config struct {
	Length int `mapstructure:"length"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// GeneratorOptions maps the format settings onto generator.Options.
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		Default:          c.Format.Default,
		SnowflakeMachine: c.Snowflake.MachineID,
		SnowflakeEpoch:   c.Snowflake.Epoch,
		NanoIDSize:       c.NanoID.Size,
		NanoIDAlphabet:   c.NanoID.Alphabet,
		CUID2Length:      c.CUID2.Length,
	}
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	pkgconfig.SetDefaults(v, map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          8090,
		"grpc.host":            "0.0.0.0",
		"grpc.port":            50053,
		"format.default":       generator.FormatUILD,
		"snowflake.machine_id": 1,
		"snowflake.epoch":      generator.DefaultSnowflakeEpoch,
		"nanoid.size":          generator.DefaultNanoIDSize,
		"nanoid.alphabet":      generator.DefaultNanoIDAlphabet,
		"cuid2.length":         generator.DefaultCUID2Length,
		"environment":          "production",
		"log.level":            "info",
	})

	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":          "PORT",
		"grpc.port":            "GRPC_PORT",
		"format.default":       "ID_FORMAT",
		"snowflake.machine_id": "SNOWFLAKE_MACHINE_ID",
		"nanoid.size":          "NANOID_SIZE",
		"nanoid.alphabet":      "NANOID_ALPHABET",
		"cuid2.length":         "CUID2_LENGTH",
		"environment":          "APP_ENV",
		"log.level":            "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
