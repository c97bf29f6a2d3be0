package main

import (
	"context"
	"os"

	"github.com/junoblue/launch/db-check/internal/config"
	"github.com/junoblue/launch/pkg/database"
	pkglog "github.com/junoblue/launch/pkg/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Error().Err(err).Msg("failed to load config")
		return 1
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "db-check",
	})
	logger := pkglog.L()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	dbCfg := cfg.Database
	if cfg.Secret.ID != "" {
		logger.Info().Str("secret_id", cfg.Secret.ID).Str("region", cfg.Secret.Region).Msg("loading credentials from secrets manager")

		client, err := database.NewSecretsClient(ctx, cfg.Secret.Region)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create secrets manager client")
			return 1
		}
		dbCfg, err = database.LoadWithSecret(ctx, client, cfg.Secret.ID, dbCfg)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load database credentials")
			return 1
		}
	}

	logger.Info().
		Str("driver", dbCfg.Driver).
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("dbname", dbCfg.DBName).
		Msg("connecting to database")

	db, err := database.New(dbCfg)
	if err != nil {
		logger.Error().Err(err).Msg("connection failed")
		return 1
	}
	defer database.Close(db)

	res, err := database.Probe(ctx, db)
	if err != nil {
		logger.Error().Err(err).Msg("probe failed")
		return 1
	}

	logger.Info().Str("version", res.Version).Msg("server version")
	logger.Info().Str("server_time", res.ServerTime).Msg("server time")
	logger.Info().Int64("record_id", res.RecordID).Msg("temporary table insert ok")
	logger.Info().Dur("elapsed", res.Elapsed).Msg("all database checks passed")
	return 0
}
