package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/migarbe/SisConVen-sub000/internal/inventory"
)

// lowStockLister is the slice of the inventory service the scan needs.
type lowStockLister interface {
	ListBelow(ctx context.Context, threshold float64) ([]inventory.Product, error)
}

// LowStockScanConfig wires the restock scan.
type LowStockScanConfig struct {
	Logger    *slog.Logger
	Inventory lowStockLister
	Threshold float64
}

// NewLowStockScanHandler returns the handler for TaskTypeLowStockScan. It
// logs every product under the threshold so operators see restock candidates
// in the worker output.
func NewLowStockScanHandler(cfg LowStockScanConfig) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		products, err := cfg.Inventory.ListBelow(ctx, cfg.Threshold)
		if err != nil {
			return err
		}
		for _, p := range products {
			cfg.Logger.Warn("product below restock threshold",
				slog.Int64("product_id", p.ID),
				slog.String("name", p.Name),
				slog.Float64("stock_qty", p.StockQty))
		}
		cfg.Logger.Info("low stock scan finished", slog.Int("flagged", len(products)))
		return nil
	}
}

// NewLowStockScanTask constructs the cron task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockScan, nil)
}
