package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geowise/station-healthcheck/internal/config"
	"github.com/geowise/station-healthcheck/internal/handler"
	"github.com/geowise/station-healthcheck/internal/monitor"
	"github.com/geowise/station-healthcheck/internal/seed"
	"github.com/geowise/station-healthcheck/internal/service"
	"github.com/geowise/station-healthcheck/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Verbose)
	clock := clockwork.NewRealClock()

	// Metrics
	metrics := monitor.NewMetrics(clock)
	alarm := monitor.NewAlarm(metrics, cfg.AlarmThreshold)

	// Optional station source
	analysisCfg := service.AnalysisConfig{
		Logger:  log,
		Detect:  cfg.Detect,
		Workers: cfg.Workers,
		Metrics: metrics,
		Clock:   clock,
	}
	var pinger handler.Pinger
	if cfg.DatabaseDSN != "" {
		db, err := storage.NewPostgresDB(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("Connected to PostgreSQL")

		if cfg.SeedData {
			seedData(log, db)
		}
		analysisCfg.Stations = storage.NewPostgresRepository(db)
		pinger = db
	}

	// Services
	analysisSvc, err := service.NewAnalysisService(analysisCfg)
	if err != nil {
		return err
	}
	defer analysisSvc.Close()
	reportSvc := service.NewReportService(clock)

	// Handlers
	analysisHandler := handler.NewAnalysisHandler(log, analysisSvc, reportSvc, cfg.MaxUploadBytes)
	healthHandler := handler.NewHealthHandler(pinger, metrics, alarm)

	// Router
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("/health", healthHandler.Health)

	// Uploads
	mux.HandleFunc("/v1/analyze", analysisHandler.Analyze)
	mux.HandleFunc("/v1/report", analysisHandler.Report)
	mux.HandleFunc("/v1/signal-view", analysisHandler.SignalView)

	// Stations
	if analysisCfg.Stations != nil {
		stationHandler := handler.NewStationHandler(analysisSvc, cfg.MaxUploadBytes)
		mux.HandleFunc("/v1/stations", stationHandler.List)
		mux.HandleFunc("/v1/stations/", func(w http.ResponseWriter, r *http.Request) {
			path := strings.Trim(r.URL.Path, "/")
			if strings.HasSuffix(path, "/analysis") {
				stationHandler.Analysis(w, r)
				return
			}
			if strings.HasSuffix(path, "/readings") {
				stationHandler.Import(w, r)
				return
			}
			http.NotFound(w, r)
		})
	}

	// Metrics
	mux.HandleFunc("/v1/metrics", healthHandler.Metrics)
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middleware
	var h http.Handler = mux
	h = handler.RequestID(h)
	h = handler.Logging(log, h)
	h = handler.Recovery(log, h)

	// Server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info("Station health check running", "port", cfg.Port, "workers", cfg.Workers, "stations", analysisCfg.Stations != nil)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	log.Info("Server stopped")
	return nil
}

func seedData(log *slog.Logger, db *sql.DB) {
	log.Info("Seeding demo stations...")
	if _, err := db.Exec(seed.GenerateSQL()); err != nil {
		log.Warn("Seed data failed", "error", err)
		return
	}
	log.Info("Seed data loaded successfully")
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
	}))
}
