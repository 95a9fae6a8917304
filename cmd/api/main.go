package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MeshanKhosla/convex-queue/internal/admission"
	"github.com/MeshanKhosla/convex-queue/internal/app"
	"github.com/MeshanKhosla/convex-queue/internal/clock"
	"github.com/MeshanKhosla/convex-queue/internal/config"
	"github.com/MeshanKhosla/convex-queue/internal/storage/postgres"
	"github.com/MeshanKhosla/convex-queue/internal/storage/rediscache"
	transporthttp "github.com/MeshanKhosla/convex-queue/internal/transport/http"
	"github.com/MeshanKhosla/convex-queue/migrations"
)

const startupTimeout = 5 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
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

	ctrl := admission.NewController()

	registryRepo := postgres.NewRegistryRepository(pool)
	registrySvc := app.NewRegistryService(registryRepo, clock.NewSystem())
	ledgerRepo := postgres.NewLedgerRepository(pool)
	ledgerSvc := app.NewLedgerService(ledgerRepo, ctrl, clock.NewSystem())
	statsRepo := postgres.NewStatsRepository(pool)
	statsSvc := app.NewStatsService(statsRepo)

	// Admission counters live in memory, so reseed them from the
	// ledger before taking traffic.
	if err := ledgerSvc.RebuildAdmission(startupCtx); err != nil {
		logger.Fatal("rebuild admission state", zap.Error(err))
	}

	var statsProvider transporthttp.QueueStatsProvider = statsSvc
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("parse redis url", zap.Error(err))
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()

		if err := client.Ping(startupCtx).Err(); err != nil {
			logger.Warn("redis ping failed, stats served uncached", zap.Error(err))
		} else {
			statsProvider = rediscache.NewStatsCache(statsSvc, client, cfg.StatsCacheTTL)
			logger.Info("stats cache enabled", zap.Duration("ttl", cfg.StatsCacheTTL))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/queues", transporthttp.HandleQueues(registrySvc))
	mux.Handle("/queues/", transporthttp.HandleQueueActions(registrySvc, ledgerSvc, statsProvider))
	mux.Handle("/tickets/", transporthttp.HandleTicketActions(ledgerSvc))
	mux.Handle("/participants/", transporthttp.HandleParticipantTickets(ledgerSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOriginList(), mux), logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	logger.Info("api listening", zap.Int("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
