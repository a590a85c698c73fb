package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicore/clinic-scheduling/internal/billing"
	"github.com/clinicore/clinic-scheduling/internal/observability/metrics"
	"github.com/clinicore/clinic-scheduling/internal/scheduling"
	"github.com/clinicore/clinic-scheduling/pkg/logging"
)

type RouterConfig struct {
	Engine     BookingEngine
	Capacity   *scheduling.CapacityCalculator
	Calculator *billing.Calculator
	Records    billing.RecordStore
	Metrics    *metrics.BookingMetrics
	Logger     *logging.Logger
	PgPool     *pgxpool.Pool
	Redis      *redis.Client
	Env        string
	Version    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/doctors/{doctorID}/capacity", capacityHandler(cfg.Capacity))
	r.Get("/doctors/{doctorID}/calendar", calendarHandler(cfg.Capacity))

	r.Post("/bookings", createBookingHandler(cfg.Engine, cfg.Metrics))

	r.Post("/billing/quote", quoteHandler(cfg.Calculator, cfg.Metrics))
	r.Post("/billing/records", createBillingRecordHandler(cfg.Records))

	return r
}
