package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/config"
	"github.com/oksasatya/library-management/internal/container"
	"github.com/oksasatya/library-management/internal/domain/repository"
	"github.com/oksasatya/library-management/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/library-management/internal/infrastructure/postgres"
	"github.com/oksasatya/library-management/internal/interface/middleware"
	"github.com/oksasatya/library-management/internal/router"
	"github.com/oksasatya/library-management/pkg/helpers"
	"github.com/oksasatya/library-management/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	shutdownTracing, err := helpers.InitTracing(ctx, cfg.AppName, cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Fatal("failed to init tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	// Redis backs the rate limiter; without it limits are kept per process
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		client, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable; rate limits are per process")
		} else {
			rdb = client
			defer func() { _ = rdb.Close() }()
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to init GCS client")
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("failed to init elasticsearch client")
		}
		container.SetES(es)
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.AppName)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer pub.Close()
		container.SetRabbitPub(pub)
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetStore(store)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, helpers.SessionTTL))

	services := router.BuildServices()
	if err := services.Roles.EnsureDefaults(ctx); err != nil {
		logger.WithError(err).Fatal("failed to seed default roles")
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	// Registry: every route is guarded from router.Policies
	reg := router.NewRegistry(r, router.Guards{
		Verifier: services.Auth,
		Roles:    services.Roles,
		Logger:   logger,
		Limiter:  middleware.RateLimit(rdb, cfg.LoginRateLimit, time.Minute, middleware.KeyByIPAndPath(), nil),
	})
	router.InitModules(reg, services)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// openStore returns the record store selected by STORE_DRIVER. The postgres
// store is migrated before use.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.Store, func()) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), func() {}
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), poolOptions(cfg))
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		logger.WithError(err).Fatal("migration failed")
	}
	container.SetPGPool(pool)
	return pginfra.NewStore(pool), pool.Close
}

func poolOptions(cfg *config.Config) pginfra.PoolOptions {
	return pginfra.PoolOptions{
		AppName:     cfg.AppName,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	}
}
