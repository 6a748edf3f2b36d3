package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/app"
	"github.com/migarbe/SisConVen-sub000/internal/commission"
	"github.com/migarbe/SisConVen-sub000/internal/directory"
	"github.com/migarbe/SisConVen-sub000/internal/fx"
	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/platform/cache"
	"github.com/migarbe/SisConVen-sub000/internal/platform/db"
	"github.com/migarbe/SisConVen-sub000/internal/sales"
	"github.com/migarbe/SisConVen-sub000/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	defaultRate, err := decimal.NewFromString(cfg.FXDefaultRate)
	if err != nil {
		logger.Error("parse FX_DEFAULT_RATE", slog.Any("error", err))
		os.Exit(1)
	}
	rates := fx.NewCachedProvider(fx.NewStaticProvider(defaultRate), redisClient, cfg.FXCacheTTL)

	inventoryService := inventory.NewService(inventory.NewRepository(pool))
	salesService := sales.NewService(sales.NewRepository(pool), rates, logger)
	commissionService := commission.NewService(commission.NewRepository(pool), rates)
	directoryService := directory.NewService(directory.NewRepository(pool), commissionService)

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Mailer:    jobs.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeReminderScan, Handler: jobs.NewReminderScanHandler(jobs.ReminderScanConfig{
				Logger:  logger,
				Sales:   salesService,
				Clients: directoryService,
				Queue:   queue,
				MaxAge:  cfg.ReminderAge,
			})},
			{Type: jobs.TaskTypeLowStockScan, Handler: jobs.NewLowStockScanHandler(jobs.LowStockScanConfig{
				Logger:    logger,
				Inventory: inventoryService,
				Threshold: cfg.LowStockThreshold,
			})},
			{Type: jobs.TaskTypeFXRefresh, Handler: jobs.NewFXRefreshHandler(jobs.FXRefreshConfig{
				Logger:   logger,
				Provider: rates,
			})},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 8 * * *", Task: jobs.NewReminderScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: jobs.NewLowStockScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 * * * *", Task: jobs.NewFXRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
