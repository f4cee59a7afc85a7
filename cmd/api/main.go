package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pk210607/foodie-hub/internal/app"
	"github.com/pk210607/foodie-hub/internal/clock"
	"github.com/pk210607/foodie-hub/internal/config"
	"github.com/pk210607/foodie-hub/internal/notify"
	"github.com/pk210607/foodie-hub/internal/storage/postgres"
	transporthttp "github.com/pk210607/foodie-hub/internal/transport/http"
	"github.com/pk210607/foodie-hub/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			cfgPath = "config.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	// Stock updates are best effort; the api runs fine without Redis.
	var notifier app.StockNotifier
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			logger.Warn("redis unreachable, stock updates disabled", zap.Error(err))
			_ = rdb.Close()
		} else {
			defer func() { _ = rdb.Close() }()
			notifier = notify.NewRedis(rdb)
			logger.Info("publishing stock updates", zap.String("addr", cfg.RedisAddr))
		}
	}

	sysClock := clock.NewSystem()
	cartSvc := app.NewCartService(postgres.NewCartRepository(pool), sysClock, logger, notifier)
	catalogSvc := app.NewCatalogService(postgres.NewCatalogRepository(pool), sysClock, logger, notifier)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/cart", transporthttp.HandleListCart(cartSvc))
	mux.Handle("/cart/items", transporthttp.HandleReserve(cartSvc))
	mux.Handle("/cart/lines/", transporthttp.HandleCartLine(cartSvc))
	mux.Handle("/items", transporthttp.HandleMenu(catalogSvc))
	mux.Handle("/admin/items", transporthttp.HandleAdminItems(catalogSvc))
	mux.Handle("/admin/items/", transporthttp.HandleAdminRestock(catalogSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		logger.Info("api listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
