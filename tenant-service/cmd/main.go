package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/junoblue/launch/pkg/database"
	"github.com/junoblue/launch/pkg/health"
	"github.com/junoblue/launch/pkg/idrpc"
	"github.com/junoblue/launch/pkg/jwt"
	pkglog "github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/middleware"
	"github.com/junoblue/launch/pkg/pubsub"
	"github.com/junoblue/launch/pkg/storage"
	"github.com/junoblue/launch/pkg/uild"
	"github.com/junoblue/launch/tenant-service/internal/cache"
	"github.com/junoblue/launch/tenant-service/internal/config"
	"github.com/junoblue/launch/tenant-service/internal/consumer"
	"github.com/junoblue/launch/tenant-service/internal/domain"
	"github.com/junoblue/launch/tenant-service/internal/handler"
	"github.com/junoblue/launch/tenant-service/internal/repository"
	"github.com/junoblue/launch/tenant-service/internal/service"
	"github.com/junoblue/launch/tenant-service/internal/stream"
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
		ServiceName: "tenant-service",
		Environment: cfg.Environment,
	})
	logger := pkglog.L()

	logger.Info().Msg("starting tenant-service")

	watching := cfg.Watch(func(next *config.Config) {
		lvl := pkglog.SetLevel(next.Log.Level)
		logger.Info().Str("level", lvl.String()).Msg("config reloaded")
	})
	if watching {
		logger.Info().Msg("watching config file for log level changes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database, optionally with credentials from Secrets Manager
	dbCfg := cfg.Database
	if cfg.Secret.ID != "" {
		client, err := database.NewSecretsClient(ctx, cfg.Secret.Region)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create secrets manager client")
		}
		dbCfg, err = database.LoadWithSecret(ctx, client, cfg.Secret.ID, dbCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load database credentials")
		}
	}

	db, err := database.New(dbCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, &domain.TenantModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", dbCfg.Driver).Msg("database migration completed")

	// Redis backs the cache and, with the redis driver, the event bus
	var redisClient *redis.Client
	if cfg.Cache.Enabled || (cfg.Events.Enabled && cfg.Events.Driver == pubsub.DriverRedis) {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var tenantCache cache.TenantCache = cache.NopCache{}
	if cfg.Cache.Enabled {
		tenantCache = cache.NewRedisTenantCache(redisClient, cfg.Cache.Prefix)
		logger.Info().Str("prefix", cfg.Cache.Prefix).Dur("ttl", cfg.Cache.TTL).Msg("tenant cache enabled")
	}

	var bus pubsub.PubSub
	if cfg.Events.Enabled {
		if cfg.Events.Driver == pubsub.DriverRedis {
			bus = pubsub.NewRedisPubSubWithClient(redisClient)
		} else {
			// Every replica must see every event, so each gets its own
			// consumer groups.
			if host, err := os.Hostname(); err == nil && cfg.Events.Driver == pubsub.DriverKafka {
				cfg.Events.Kafka.GroupID += "-" + host
			}
			bus, err = pubsub.NewPubSub(cfg.Events.Config)
			if err != nil {
				logger.Fatal().Err(err).Str("driver", cfg.Events.Driver).Msg("failed to create event bus")
			}
		}
		defer bus.Close()
		logger.Info().Str("driver", cfg.Events.Driver).Msg("tenant events enabled")
	}

	assets, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create asset storage")
	}

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	var ids service.IDSource = service.NewLocalIDs(uild.NewGenerator())
	if cfg.IDService.GRPCAddress != "" {
		client, err := idrpc.Dial(cfg.IDService.GRPCAddress)
		if err != nil {
			logger.Fatal().Err(err).Str("address", cfg.IDService.GRPCAddress).Msg("failed to dial id-service")
		}
		defer client.Close()
		ids = service.NewRemoteIDs(client, cfg.IDService.Timeout)
		logger.Info().Str("address", cfg.IDService.GRPCAddress).Msg("minting ids through id-service")
	}

	deps := service.Deps{
		Repo:     repository.NewGormTenantRepository(db),
		Cache:    tenantCache,
		IDs:      ids,
		Tokens:   tokens,
		Assets:   assets,
		CacheTTL: cfg.Cache.TTL,
	}
	if bus != nil {
		deps.Events = bus
	}
	tenantService := service.NewTenantService(deps)

	// One subscription feeds both the cache invalidator and the websocket
	// hub. Other replicas publish changes too.
	var hub *stream.Hub
	if bus != nil {
		var handlers []consumer.Handler
		if cfg.Cache.Enabled {
			handlers = append(handlers, consumer.NewCacheInvalidator(tenantService))
		}
		if cfg.Stream.Enabled {
			hub = stream.NewHub()
			handlers = append(handlers, hub)
		}
		if len(handlers) > 0 {
			if err := consumer.NewDispatcher(bus, handlers...).Start(ctx); err != nil {
				logger.Fatal().Err(err).Msg("failed to start tenant event dispatcher")
			}
		}
	}

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), pkglog.GinMiddleware(logger))
	if cfg.Storage.Type == storage.TypeLocal && strings.HasPrefix(cfg.Storage.Local.BaseURL, "/") {
		router.Static(cfg.Storage.Local.BaseURL, cfg.Storage.Local.BasePath)
	}

	checker := health.NewChecker(health.WithEnvironment(cfg.Environment))
	h := handler.NewHandler(tenantService, middleware.NewAuthMiddleware(tokens), checker, cfg.Server.MaxLogoBytes)
	if hub != nil {
		h.WithEventStream(handler.NewStreamHandler(hub, cfg.Stream.Config, cfg.Stream.AllowedOrigins))
	}
	h.RegisterRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down tenant-service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	logger.Info().Msg("tenant-service stopped")
}
