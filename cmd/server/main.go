package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/api"
	"github.com/GodofWar9000/tele-triage/internal/api/handler"
	"github.com/GodofWar9000/tele-triage/internal/config"
	"github.com/GodofWar9000/tele-triage/internal/db"
	"github.com/GodofWar9000/tele-triage/internal/intake"
	"github.com/GodofWar9000/tele-triage/internal/matcher"
	"github.com/GodofWar9000/tele-triage/internal/metrics"
	"github.com/GodofWar9000/tele-triage/internal/notifier"
	"github.com/GodofWar9000/tele-triage/internal/queue"
	"github.com/GodofWar9000/tele-triage/internal/ratelimiter"
	"github.com/GodofWar9000/tele-triage/internal/repository"
	"github.com/GodofWar9000/tele-triage/internal/service"
	"github.com/GodofWar9000/tele-triage/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	// ---- storage ----
	// Postgres when DATABASE_URL is set, otherwise in-memory stores seeded
	// from FACILITIES_PATH.
	st := openStores(ctx, cfg, logger)
	defer st.close()

	schema, err := intake.LoadSchema(cfg.IntakeSchemaPath)
	if err != nil {
		logger.Fatal("failed to load intake schema", zap.Error(err))
	}

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	q := queue.New()
	m := metrics.New(reg, q.Depths)
	limiter := ratelimiter.New(cfg.NotifyRatePerSec)
	match := matcher.New(st.facilities, cfg.SearchRadiusKm, cfg.MaxFacilities, nil)
	notify := newNotifier(cfg, logger)

	onDispatched, onRequeued := m.ServiceHooks()
	svc := service.NewTriageService(intake.NewService(schema, logger), q, st.outcomes, logger, service.Hooks{
		OnDispatched: onDispatched,
		OnRequeued:   onRequeued,
	})

	// ---- worker pool ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	onDelivered, onAbandoned, onRetry := m.WorkerHooks()
	pool := worker.NewPool(cfg, q, match, notify, limiter, st.outcomes, logger, worker.MetricHooks{
		OnDelivered: onDelivered,
		OnAbandoned: onAbandoned,
		OnRetry:     onRetry,
	})
	pool.Start(workerCtx)
	logger.Info("worker pool started",
		zap.Int("workers", cfg.Workers),
		zap.String("notifier", cfg.Notifier),
		zap.Duration("retry_delay", cfg.RetryDelay),
	)

	backlog := worker.NewBacklogMonitor(q, cfg.BacklogCheckInterval, cfg.BacklogWarnAfter, logger, m.BacklogHook())
	go backlog.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(svc, q, pool, st.pinger, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "tele-triage"),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new SMS and reviewer requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop workers. Cases still queued or mid-retry are lost; queue
	// state is in memory only.
	cancelWorkers()
	q.Close()

	// 3. Wait for every worker goroutine to return.
	pool.Wait()

	intakeDepth, dispatchDepth := q.Depths()
	logger.Info("server stopped cleanly",
		zap.Int("dropped_intake", intakeDepth),
		zap.Int("dropped_dispatch", dispatchDepth),
	)
}

type stores struct {
	facilities matcher.FacilitySource
	outcomes   repository.OutcomeRepository
	pinger     handler.Pinger // nil without a database
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) stores {
	if cfg.DatabaseURL == "" {
		facilities, err := repository.LoadFacilitiesFile(cfg.FacilitiesPath)
		if err != nil {
			logger.Fatal("failed to load facilities", zap.Error(err))
		}
		logger.Warn("DATABASE_URL not set; using in-memory stores",
			zap.String("facilities", cfg.FacilitiesPath))
		return stores{
			facilities: facilities,
			outcomes:   repository.NewMemoryOutcomeRepository(),
			close:      func() {},
		}
	}

	dbPool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	seedFacilities(ctx, dbPool, cfg.FacilitiesPath, logger)
	return stores{
		facilities: repository.NewPgFacilityRepository(dbPool),
		outcomes:   repository.NewPgOutcomeRepository(dbPool),
		pinger:     dbPool,
		close:      dbPool.Close,
	}
}

func seedFacilities(ctx context.Context, pool *pgxpool.Pool, path string, logger *zap.Logger) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return
	}
	n, err := repository.SeedFacilities(ctx, pool, path)
	if err != nil {
		logger.Fatal("failed to seed facilities", zap.Error(err))
	}
	if n > 0 {
		logger.Info("facility directory seeded", zap.Int("facilities", n))
	}
}

func newNotifier(cfg *config.Config, logger *zap.Logger) notifier.Notifier {
	switch cfg.Notifier {
	case config.NotifierWebhook:
		return notifier.NewWebhookNotifier(cfg.WebhookURL, cfg.NotifyTimeout)
	case config.NotifierLog:
		return notifier.NewLogNotifier(logger)
	default:
		return notifier.NewTwilioNotifier(cfg.TwilioBaseURL, cfg.TwilioAccountSID,
			cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.NotifyTimeout)
	}
}
