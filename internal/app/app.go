package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/api"
	"github.com/huyndao/robux-exchange/internal/api/middleware"
	"github.com/huyndao/robux-exchange/internal/config"
	"github.com/huyndao/robux-exchange/internal/idempotency"
	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/observability"
	"github.com/huyndao/robux-exchange/internal/service"
	"github.com/huyndao/robux-exchange/internal/storage"
	"github.com/huyndao/robux-exchange/internal/worker"
)

// Run bootstraps the HTTP server and background workers, blocking until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetTokenSecret(cfg.TokenSecret)
	middleware.SetTokenIssuer(cfg.TokenIssuer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	persister, err := newPersister(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer persister.Close()

	store, err := ledger.Open(ctx, persister)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	var redisClient *redis.Client
	var idemStore *idempotency.Store
	if cfg.RedisURL != "" {
		redisClient, err = newRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		idemStore = idempotency.NewStore(redisClient, cfg.IdempotencyTTL)
	}

	accounts := service.NewAccountService(store)
	orders := service.NewOrderService(store).WithPendingTTL(cfg.PendingOrderTTL)
	rates := service.NewRateService(store)
	referrals := service.NewReferralService(store)
	complaints := service.NewComplaintService(store)
	reconciliation := service.NewReconciliationService(store)

	sweepWorker := worker.NewSweepWorker(orders).WithInterval(cfg.SweepInterval)
	stopSweep := sweepWorker.Run(ctx)

	reconcileWorker := worker.NewReconciliationWorker(reconciliation).WithInterval(cfg.ReconcileInterval)
	stopReconcile := reconcileWorker.Run(ctx)

	var redisCmd redis.Cmdable
	if redisClient != nil {
		redisCmd = redisClient
	}
	router := api.NewRouter(cfg, logger, persister, redisCmd, idemStore, accounts, orders, rates, referrals, complaints)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping workers")
	stopSweep()
	stopReconcile()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newPersister(ctx context.Context, cfg *config.Config) (storage.Persister, error) {
	if cfg.DatabaseURL != "" {
		return storage.NewPostgresPersister(ctx, cfg.DatabaseURL, cfg.ShopID)
	}
	return storage.NewFilePersister(cfg.DataFile), nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
