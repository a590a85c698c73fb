package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/clinic-scheduling/internal/config"
	"github.com/clinicore/clinic-scheduling/internal/db"
	"github.com/clinicore/clinic-scheduling/internal/scheduling"
	"github.com/clinicore/clinic-scheduling/pkg/logging"
)

// report-worker periodically walks the availability window and logs consumed
// versus daily units per doctor-day, so operators can spot days filling up.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("report-worker starting up",
		"env", cfg.Env,
		"interval", cfg.ReportInterval.String(),
		"window", cfg.ReportWindow.String(),
	)

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

	store := scheduling.NewPgStore(pgPool)

	// Run once at startup
	runOnce(rootCtx, store, cfg.ReportWindow, logger)

	ticker := time.NewTicker(cfg.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping report worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, store, cfg.ReportWindow, logger)
		}
	}
}

func runOnce(ctx context.Context, store *scheduling.PgStore, window time.Duration, logger *logging.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	from := scheduling.Day(start)
	to := scheduling.Day(start.Add(window))

	rows, err := store.DailyUtilization(runCtx, from, to)
	if err != nil {
		logger.Error("utilization report error", "error", err)
		return
	}

	var full int
	for _, row := range rows {
		if row.ConsumedUnits >= row.DailyCapacityUnits {
			full++
			logger.Warn("clinic day fully booked",
				"doctor_id", row.DoctorID,
				"date", row.Date.Format(time.DateOnly),
				"daily_units", row.DailyCapacityUnits,
			)
			continue
		}
		logger.Debug("clinic day utilization",
			"doctor_id", row.DoctorID,
			"date", row.Date.Format(time.DateOnly),
			"consumed_units", row.ConsumedUnits,
			"daily_units", row.DailyCapacityUnits,
		)
	}

	logger.Info("utilization report complete",
		"days", len(rows),
		"fully_booked", full,
		"took", time.Since(start).String(),
	)
}
