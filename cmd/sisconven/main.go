package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/migarbe/SisConVen-sub000/internal/app"
	"github.com/migarbe/SisConVen-sub000/internal/commission"
	"github.com/migarbe/SisConVen-sub000/internal/directory"
	"github.com/migarbe/SisConVen-sub000/internal/fx"
	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/platform/cache"
	"github.com/migarbe/SisConVen-sub000/internal/platform/db"
	"github.com/migarbe/SisConVen-sub000/internal/procurement"
	"github.com/migarbe/SisConVen-sub000/internal/sales"
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

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, rates, logger)
	salesHandler := sales.NewHandler(logger, salesService)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, rates, logger)
	procurementHandler := procurement.NewHandler(logger, procurementService)

	commissionRepo := commission.NewRepository(pool)
	commissionService := commission.NewService(commissionRepo, rates)
	commissionHandler := commission.NewHandler(logger, commissionService)

	directoryRepo := directory.NewRepository(pool)
	directoryService := directory.NewService(directoryRepo, commissionService)
	directoryHandler := directory.NewHandler(logger, directoryService)

	fxHandler := fx.NewHandler(logger, rates)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		InventoryHandler:   inventoryHandler,
		SalesHandler:       salesHandler,
		ProcurementHandler: procurementHandler,
		DirectoryHandler:   directoryHandler,
		CommissionHandler:  commissionHandler,
		FXHandler:          fxHandler,
		Pool:               pool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
