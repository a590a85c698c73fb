package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clinicore/clinic-scheduling/internal/api"
	"github.com/clinicore/clinic-scheduling/internal/billing"
	"github.com/clinicore/clinic-scheduling/internal/config"
	"github.com/clinicore/clinic-scheduling/internal/db"
	"github.com/clinicore/clinic-scheduling/internal/observability/metrics"
	redisclient "github.com/clinicore/clinic-scheduling/internal/redis"
	"github.com/clinicore/clinic-scheduling/internal/scheduling"
	"github.com/clinicore/clinic-scheduling/pkg/logging"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection error", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("error closing redis", "error", err)
		}
	}()
	logger.Info("connected to Redis")

	store := scheduling.NewPgStore(pgPool)
	locker := redisclient.NewRedisScheduleLocker(rdb, cfg.LockTTL)

	// The committed fact handed back to downstream consumers, e.g. a billing screen.
	notifier := scheduling.NotifierFunc(func(d scheduling.Duration, date time.Time) {
		logger.Info("booking confirmed downstream",
			"duration_minutes", int(d),
			"date", date.Format(time.DateOnly),
		)
	})

	engine := scheduling.NewEngine(store, locker, notifier, logger)
	capacity := scheduling.NewCapacityCalculator(store, store)

	billingStore := billing.NewPgStore(pgPool)
	loadCtx, cancelLoad := context.WithTimeout(rootCtx, 10*time.Second)
	calculator, err := billing.LoadCalculator(loadCtx, billingStore)
	cancelLoad()
	if err != nil {
		logger.Error("load rate tables", "error", err)
		os.Exit(1)
	}
	logger.Info("rate tables loaded")

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	router := api.NewRouter(api.RouterConfig{
		Engine:     engine,
		Capacity:   capacity,
		Calculator: calculator,
		Records:    billingStore,
		Metrics:    bookingMetrics,
		Logger:     logger,
		PgPool:     pgPool,
		Redis:      rdb,
		Env:        cfg.Env,
		Version:    version,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	case <-rootCtx.Done():
	}

	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
