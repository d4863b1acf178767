package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	applicationHandler "eventhub/internal/application/handler"
	applicationMetrics "eventhub/internal/application/metrics"
	applicationService "eventhub/internal/application/service"
	applicationStore "eventhub/internal/application/store"
	"eventhub/internal/audit"
	categoryHandler "eventhub/internal/category/handler"
	categoryService "eventhub/internal/category/service"
	categoryStore "eventhub/internal/category/store"
	eventHandler "eventhub/internal/event/handler"
	eventMetrics "eventhub/internal/event/metrics"
	eventService "eventhub/internal/event/service"
	eventStore "eventhub/internal/event/store"
	"eventhub/internal/platform/config"
	"eventhub/internal/platform/httpserver"
	"eventhub/internal/platform/logger"
	"eventhub/internal/platform/metrics"
	"eventhub/internal/platform/postgres"
	"eventhub/internal/platform/redis"
	httptransport "eventhub/internal/transport/http"
	"eventhub/pkg/platform/tx"
)

// main wires stores, services and transport, then runs the HTTP server and
// the audit worker until a shutdown signal arrives. Business logic lives in
// the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		events     eventStore.Store
		apps       applicationService.Store
		categories categoryService.Store
		auditStore audit.Store
		txRunner   tx.Runner
		health     *httptransport.HealthHandler
	)
	if cfg.DatabaseURL != "" {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		events = eventStore.NewPostgres(db)
		apps = applicationStore.NewPostgres(db)
		categories = categoryStore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		txRunner = tx.NewSQL(db)

		redisClient, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		if redisClient != nil {
			defer redisClient.Close()
			events = eventStore.NewCached(events, redisClient.Client, cfg.EventCacheTTL, log)
		}
		health = httptransport.NewHealthHandler(db, redisClient)
	} else {
		log.Warn("no database configured, using in-memory stores")
		events = eventStore.NewInMemory()
		apps = applicationStore.NewInMemory()
		categories = categoryStore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		txRunner = tx.Passthrough{}
		health = httptransport.NewHealthHandler(nil, nil)
	}

	// Audit pipeline: services publish to a channel, the worker persists.
	auditChan := make(chan audit.Entry, cfg.AuditBuffer)
	auditPublisher := audit.NewPublisher(auditChan, log)
	auditWorker := audit.NewWorker(auditStore, auditChan, log)

	evMetrics := eventMetrics.New()
	appMetrics := applicationMetrics.New()

	categorySvc, err := categoryService.New(categories,
		categoryService.WithLogger(log),
		categoryService.WithAuditRecorder(auditPublisher),
	)
	if err != nil {
		log.Error("category service init failed", "error", err)
		os.Exit(1)
	}
	eventSvc, err := eventService.New(events, categories,
		eventService.WithLogger(log),
		eventService.WithAuditRecorder(auditPublisher),
		eventService.WithMetrics(evMetrics),
	)
	if err != nil {
		log.Error("event service init failed", "error", err)
		os.Exit(1)
	}
	applicationSvc, err := applicationService.New(apps, events, txRunner,
		applicationService.WithLogger(log),
		applicationService.WithAuditRecorder(auditPublisher),
		applicationService.WithMetrics(appMetrics),
		applicationService.WithEventMetrics(evMetrics),
	)
	if err != nil {
		log.Error("application service init failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: metrics.New(),
		Health:  health,
		Handlers: []httptransport.Registrar{
			categoryHandler.New(categorySvc, log),
			eventHandler.New(eventSvc, log),
			applicationHandler.New(applicationSvc, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting eventhub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := auditWorker.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
