package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/routes"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/saleshistory"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/schema"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/snapshots"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/uistate"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/config"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/metrics"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/migrate"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/realtime"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/redis"
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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	prober := &schema.GormProber{DB: dbClient.DB()}
	resolver, err := schema.NewResolver(prober, cfg.Schema.CandidateItemTables(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build schema resolver", err)
		os.Exit(1)
	}
	resolution, err := resolver.Resolve(context.Background())
	if err != nil {
		logg.Error(context.Background(), "failed to resolve item table", err)
		os.Exit(1)
	}
	if err := prober.ProbeWrite(context.Background(), resolution); err != nil {
		logg.Error(context.Background(), "resolved item table is read-only", err)
		os.Exit(1)
	}

	historyLoader, err := saleshistory.NewLoader(cfg.Sales.FilePath, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build sales history loader", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(registry)
	feed := realtime.NewRedisFeed(redisClient, logg)

	ordersRepo := orders.NewRepository(dbClient.DB(), resolution)
	ordersService, err := orders.NewService(orders.Config{
		Repo:          ordersRepo,
		History:       historyLoader,
		Feed:          feed,
		Metrics:       storeMetrics,
		Logger:        logg,
		MarginPercent: cfg.Replenish.MarginPercent,
		ChunkSize:     cfg.Replenish.BulkChunkSize,
		WeekScope:     cfg.Replenish.WeekScopeEnabled,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	snapshotService, err := snapshots.NewService(snapshots.NewRepository(dbClient.DB()), ordersRepo, ordersService, logg, cfg.Replenish.SnapshotListCap)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot service", err)
		os.Exit(1)
	}

	uiStateService, err := uistate.NewService(uistate.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ui state service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, ordersService, snapshotService, uiStateService),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
