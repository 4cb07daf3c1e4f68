package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/schema"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/config"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/metrics"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/realtime"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/redis"
)

// The feed worker tails every order's item change channel, mirrors each
// observed order in memory and folds the mirror totals back into the
// denormalized provider summaries. It is the one consumer that sees all
// orders, so it doubles as a liveness probe for the realtime pipeline.
func main() {
	logg := logger.New(logger.Options{ServiceName: "feed-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "feed-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	prober := &schema.GormProber{DB: dbClient.DB()}
	resolver, err := schema.NewResolver(prober, cfg.Schema.CandidateItemTables(), logg)
	if err != nil {
		logg.Error(ctx, "failed to build schema resolver", err)
		os.Exit(1)
	}
	resolution, err := resolver.Resolve(ctx)
	if err != nil {
		logg.Error(ctx, "failed to resolve item table", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(registry)

	mirrors := orders.NewMirrors(
		orders.NewRepository(dbClient.DB(), resolution),
		realtime.NewRedisFeed(redisClient, logg),
		logg,
		storeMetrics,
		cfg.Replenish.WeekScopeEnabled,
	)
	defer mirrors.Close()

	go serveMetrics(ctx, cfg, logg, registry)

	logg.Info(ctx, "feed worker started")
	tailFeed(ctx, redisClient, mirrors, logg)
	logg.Info(ctx, "feed worker shutting down gracefully")
}

// tailFeed turns each published item event into a mirror refresh for its
// order. The mirror holds its own per-order subscription; the pattern
// subscription here only discovers which orders are active.
func tailFeed(ctx context.Context, client *redis.Client, mirrors *orders.Mirrors, logg *logger.Logger) {
	sub := client.PSubscribe(ctx, redis.Key("items", "*"))
	defer sub.Close()

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			var ev realtime.ItemEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logg.Error(ctx, "dropping malformed item event", err)
				continue
			}
			orderID, err := uuid.Parse(orderIDFromChannel(msg.Channel))
			if err != nil {
				logg.Error(ctx, "dropping event with malformed order channel", err)
				continue
			}

			evCtx := logg.WithFields(ctx, map[string]any{
				"order_id": orderID.String(),
				"item_id":  ev.Item.ID.String(),
				"type":     string(ev.Type),
			})
			if err := mirrors.Observe(ctx, orderID); err != nil {
				logg.Error(evCtx, "summary refresh failed", err)
				continue
			}
			logg.Info(evCtx, "item event applied")
		}
	}
}

func orderIDFromChannel(channel string) string {
	parts := strings.Split(channel, ":")
	return parts[len(parts)-1]
}

func serveMetrics(ctx context.Context, cfg *config.Config, logg *logger.Logger, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: ":" + metricsPort(cfg), Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}

func metricsPort(cfg *config.Config) string {
	if port := os.Getenv("GESTOCK_WORKER_METRICS_PORT"); port != "" {
		return port
	}
	return cfg.App.Port
}
