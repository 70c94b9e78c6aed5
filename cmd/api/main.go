package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/sipcourse-backend/api/routes"
	"github.com/angelmondragon/sipcourse-backend/internal/catalog"
	"github.com/angelmondragon/sipcourse-backend/internal/identity"
	"github.com/angelmondragon/sipcourse-backend/internal/portfolio"
	"github.com/angelmondragon/sipcourse-backend/internal/records"
	"github.com/angelmondragon/sipcourse-backend/pkg/auth/session"
	"github.com/angelmondragon/sipcourse-backend/pkg/config"
	"github.com/angelmondragon/sipcourse-backend/pkg/db"
	"github.com/angelmondragon/sipcourse-backend/pkg/instance"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
	"github.com/angelmondragon/sipcourse-backend/pkg/metrics"
	"github.com/angelmondragon/sipcourse-backend/pkg/migrate"
	"github.com/angelmondragon/sipcourse-backend/pkg/redis"
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
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	conn := dbClient.DB()
	catalogService, err := catalog.NewService(catalog.NewRepository(conn), redisClient, cfg.Cache.CatalogDomainsTTL, logg)
	if err != nil {
		return err
	}
	identityService, err := identity.NewService(identity.ServiceParams{
		Users:          identity.NewRepository(conn),
		Sessions:       sessionManager,
		Domains:        catalogService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	recordService, err := records.NewService(records.ServiceParams{
		Repo:              records.NewRepository(conn),
		Catalog:           catalogService,
		Metrics:           recorder,
		Logger:            logg,
		AllowFullPurchase: cfg.Plans.AllowFullPurchase,
		DefaultPageLimit:  cfg.Plans.ListDefaultLimit,
	})
	if err != nil {
		return err
	}
	portfolioService, err := portfolio.NewService(recordService, redisClient, cfg.Cache.PortfolioSummaryTTL, logg)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"driver":   dbClient.Driver(),
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Sessions:  sessionManager,
			Gatherer:  registry,
			Metrics:   recorder,
			Identity:  identityService,
			Catalog:   catalogService,
			Records:   recordService,
			Portfolio: portfolioService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
