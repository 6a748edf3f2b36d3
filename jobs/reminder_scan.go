package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/migarbe/SisConVen-sub000/internal/fx"
	"github.com/migarbe/SisConVen-sub000/internal/sales"
)

// overdueLister is the slice of the sales service the reminder scan needs.
type overdueLister interface {
	ListOverdue(ctx context.Context, olderThan time.Duration) ([]sales.Invoice, error)
}

// clientLookup resolves a client's contact address for reminders.
type clientLookup interface {
	ContactEmail(ctx context.Context, clientID int64) (string, error)
}

// ReminderScanConfig wires the overdue-invoice scan.
type ReminderScanConfig struct {
	Logger  *slog.Logger
	Sales   overdueLister
	Clients clientLookup
	Queue   *Client
	MaxAge  time.Duration
}

// NewReminderScanHandler returns the handler for TaskTypeReminderScan: it
// lists unsettled invoices older than MaxAge and enqueues one reminder
// email per invoice.
func NewReminderScanHandler(cfg ReminderScanConfig) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		overdue, err := cfg.Sales.ListOverdue(ctx, cfg.MaxAge)
		if err != nil {
			return err
		}
		for _, inv := range overdue {
			to := ""
			if cfg.Clients != nil {
				if addr, err := cfg.Clients.ContactEmail(ctx, inv.ClientID); err == nil {
					to = addr
				}
			}
			if to == "" {
				cfg.Logger.Warn("overdue invoice has no reachable client",
					slog.String("number", inv.Number), slog.Int64("client_id", inv.ClientID))
				continue
			}
			payload := SendEmailPayload{
				To:      to,
				Subject: fmt.Sprintf("Payment reminder: invoice %s", inv.Number),
				Body: fmt.Sprintf("Invoice %s has an outstanding balance of %s.",
					inv.Number, fx.Format(fx.HardCurrency.String(), inv.BalanceHard)),
			}
			if _, err := cfg.Queue.EnqueueSendEmail(ctx, payload); err != nil {
				return err
			}
		}
		cfg.Logger.Info("reminder scan finished", slog.Int("overdue", len(overdue)))
		return nil
	}
}

// NewReminderScanTask constructs the cron task.
func NewReminderScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReminderScan, nil)
}
