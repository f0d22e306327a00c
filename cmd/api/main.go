package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sarisari/backoffice/api"
	"github.com/sarisari/backoffice/api/controllers"
	"github.com/sarisari/backoffice/api/routes"
	"github.com/sarisari/backoffice/internal/auth"
	"github.com/sarisari/backoffice/internal/earnings"
	"github.com/sarisari/backoffice/internal/memberships"
	"github.com/sarisari/backoffice/internal/stores"
	"github.com/sarisari/backoffice/internal/users"
	"github.com/sarisari/backoffice/pkg/auth/session"
	"github.com/sarisari/backoffice/pkg/config"
	"github.com/sarisari/backoffice/pkg/db"
	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/metrics"
	"github.com/sarisari/backoffice/pkg/migrate"
	"github.com/sarisari/backoffice/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	loc, err := config.ReferenceLocation()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cacheMetrics := metrics.NewCacheMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	userRepo := users.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())
	membershipRepo := memberships.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        userRepo,
		MembershipsRepo: membershipRepo,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		return err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	currentUsers, err := auth.NewCurrentUserResolver(auth.CurrentUserResolverParams{
		Users:   userRepo,
		KV:      redisClient,
		TTL:     cfg.Cache.CurrentUserTTL,
		Metrics: cacheMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}
	switchService, err := auth.NewSwitchStoreService(auth.SwitchStoreServiceParams{
		MembershipsRepo: membershipRepo,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
		StoreRepo:       storeRepo,
		UserRepo:        userRepo,
		CurrentUsers:    currentUsers,
	})
	if err != nil {
		return err
	}
	storeService, err := stores.NewService(storeRepo, membershipRepo)
	if err != nil {
		return err
	}

	earningService, err := earnings.NewService(earnings.NewRepository(dbClient.DB(), loc), currentUsers, logg)
	if err != nil {
		return err
	}
	earningsCache := earnings.NewCache(redisClient, earnings.CacheOptions{
		TTL:          cfg.Cache.EarningsTTL,
		SweepPages:   cfg.Cache.EarningsSweepPage,
		DefaultLimit: cfg.Cache.DefaultPageLimit,
	}, cacheMetrics, logg)

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Location:    loc,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Readiness: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Redis:           redisClient,
		Sessions:        sessionManager,
		AuthService:     authService,
		RegisterService: registerService,
		SwitchService:   switchService,
		CurrentUser:     currentUsers,
		StoreService:    storeService,
		Memberships:     membershipRepo,
		Earnings:        earningService,
		EarningsCache:   earningsCache,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": loc.String(),
	})
	logg.Info(ctx, "starting api server")

	return api.Serve(ctx, api.NewServer(addr, handler), logg)
}
