package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/application"
	"wildfire-monitoring-system/internal/config"
	"wildfire-monitoring-system/internal/domain"
	"wildfire-monitoring-system/internal/infrastructure/repositories"
	"wildfire-monitoring-system/internal/infrastructure/storage"
	"wildfire-monitoring-system/internal/metrics"
	"wildfire-monitoring-system/internal/ports/api"
	"wildfire-monitoring-system/internal/ports/ws"
)

func main() {
	flags := pflag.NewFlagSet("api-gateway", pflag.ExitOnError)
	config.RegisterFlags(flags)
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := initLogger(cfg.Environment, cfg.Logging.Level)
	defer logger.Sync()

	clock := application.SystemClock{}

	areas, err := application.NewAreaRegistry(cfg.MonitoredAreas())
	if err != nil {
		logger.Fatal("Invalid area configuration", zap.Error(err))
	}

	fleet, err := application.NewFleetRegistry(cfg.DroneNests(), domain.DefaultDroneClasses(), clock, logger.Named("fleet"))
	if err != nil {
		logger.Fatal("Invalid nest configuration", zap.Error(err))
	}

	risk := application.NewRiskEngine(
		areas,
		application.NewSyntheticSignalProvider(cfg.Signals.Seed),
		clock,
		application.RiskEngineConfig{
			Thresholds:       cfg.Thresholds(),
			HistoryRetention: cfg.Monitoring.HistoryRetention,
			HistoryWindow:    cfg.Monitoring.HistoryWindow,
		},
		logger.Named("risk"),
	)

	scheduler := application.NewMissionScheduler(fleet, areas, clock, logger.Named("scheduler"))

	publisher := application.NewStatusPublisher(risk, scheduler, fleet, clock, application.PublisherConfig{
		Interval:     cfg.Monitoring.ScanInterval,
		AutoDispatch: cfg.Monitoring.AutoDispatch,
		SinkTimeout:  cfg.Monitoring.SinkTimeout,
	}, logger.Named("publisher"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)
	publisher.SetObserver(collector)

	if cfg.Database.URL != "" {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			logger.Fatal("Error connecting to database", zap.Error(err))
		}
		defer db.Close()

		if err := repositories.InitializeSchema(context.Background(), db); err != nil {
			logger.Warn("Error initializing database schema", zap.Error(err))
		}

		publisher.SetArchive(
			repositories.NewPostgresAssessmentRepository(db),
			repositories.NewPostgresMissionRepository(db),
		)
		logger.Info("Assessment archive enabled")
	}

	if cfg.MinIO.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		snapshots, err := storage.NewSnapshotStorage(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		cancel()
		if err != nil {
			logger.Fatal("Error initializing snapshot storage", zap.Error(err))
		}
		publisher.SetSnapshotStorage(snapshots)
		logger.Info("Snapshot export enabled", zap.String("bucket", cfg.MinIO.Bucket))
	}

	statusHub := ws.NewStatusHub(publisher.Snapshot, cfg.Server.CORSOrigins, logger.Named("status-hub"))
	publisher.AddBroadcaster(statusHub)
	telemetryHandler := ws.NewTelemetryHandler(scheduler, fleet, clock, cfg.Server.CORSOrigins, logger.Named("telemetry"))

	areaHandler := api.NewAreaHandler(areas, risk)
	fleetHandler := api.NewFleetHandler(fleet, scheduler)
	missionHandler := api.NewMissionHandler(scheduler, risk)
	statusHandler := api.NewStatusHandler(publisher)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(collector.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", api.APIKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/ws/status", statusHub.HandleConnection)
			r.Get("/ws/telemetry", telemetryHandler.HandleConnection)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(60 * time.Second))
				r.Use(api.RequireAPIKey(cfg.Server.APIKey))

				areaHandler.RegisterRoutes(r)
				fleetHandler.RegisterRoutes(r)
				missionHandler.RegisterRoutes(r)
				statusHandler.RegisterRoutes(r)
			})
		})
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		if err := publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("Status publisher failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	logger.Info("Shutting down server...")

	stop()
	statusHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	logger.Info("Server gracefully stopped")
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func initLogger(env, level string) *zap.Logger {
	var zapConfig zap.Config
	if env == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zapConfig.Level = lvl
	}

	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return logger
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
