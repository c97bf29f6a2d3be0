package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/junoblue/launch/id-service/internal/config"
	"github.com/junoblue/launch/id-service/internal/generator"
	idgrpc "github.com/junoblue/launch/id-service/internal/grpc"
	"github.com/junoblue/launch/id-service/internal/handler"
	"github.com/junoblue/launch/pkg/health"
	pkglog "github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/uild"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "id-service",
		Environment: cfg.Environment,
	})
	logger := pkglog.L()

	logger.Info().Msg("starting id-service")

	formats, err := generator.NewFormats(uild.NewGenerator(), cfg.GeneratorOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build id formats")
	}
	logger.Info().
		Strs("formats", formats.Names()).
		Str("default", formats.Default()).
		Int64("machine_id", cfg.Snowflake.MachineID).
		Msg("id formats initialized")

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), pkglog.GinMiddleware(logger))
	handler.NewHandler(formats, health.NewChecker(health.WithEnvironment(cfg.Environment))).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC
	grpcServer, healthServer := idgrpc.NewServer(formats, logger)
	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return idgrpc.Serve(grpcServer, grpcAddr, logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down id-service")

		healthServer.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("id-service exited with error")
		return
	}
	logger.Info().Msg("id-service stopped")
}
