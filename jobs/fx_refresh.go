package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/migarbe/SisConVen-sub000/internal/fx"
)

// FXRefreshConfig wires the exchange-rate refresh.
type FXRefreshConfig struct {
	Logger   *slog.Logger
	Provider *fx.CachedProvider
}

// NewFXRefreshHandler returns the handler for TaskTypeFXRefresh: it drops
// the cached rate and re-primes it from the upstream provider.
func NewFXRefreshHandler(cfg FXRefreshConfig) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		rate, err := cfg.Provider.Refresh(ctx)
		if err != nil {
			return err
		}
		cfg.Logger.Info("exchange rate refreshed", slog.String("rate", rate.String()))
		return nil
	}
}

// NewFXRefreshTask constructs the cron task.
func NewFXRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeFXRefresh, nil)
}
