package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/junoblue/launch/health-check/internal/certs"
	"github.com/junoblue/launch/health-check/internal/config"
	"github.com/junoblue/launch/health-check/internal/server"
	"github.com/junoblue/launch/pkg/health"
	pkglog "github.com/junoblue/launch/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		ServiceName: "health-check",
		Environment: cfg.Environment,
	})
	logger := pkglog.L()

	pair, err := certs.Ensure(cfg.TLS.CertPath, cfg.TLS.KeyPath, time.Now())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare certificate")
	}
	cert, err := pair.TLSCertificate()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load certificate")
	}

	opts := []health.Option{health.WithEnvironment(cfg.Environment)}
	if cfg.Instance.Enabled {
		opts = append(opts, health.WithInstance(health.NewIMDSResolver(cfg.Instance.Timeout)))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := server.New(addr, cert, health.NewChecker(opts...), logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Fatal().Err(err).Msg("health check server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down health-check")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("health-check stopped")
}
