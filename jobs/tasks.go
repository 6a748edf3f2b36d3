package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeReminderScan looks for overdue invoices and enqueues reminders.
	TaskTypeReminderScan = "reminder:scan"
	// TaskTypeLowStockScan reports products below the restock threshold.
	TaskTypeLowStockScan = "stock:lowscan"
	// TaskTypeFXRefresh re-primes the cached exchange rate.
	TaskTypeFXRefresh = "fx:refresh"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks. A nil mailer
// downgrades delivery to a log line, which keeps local runs working without
// an SMTP relay.
func NewSendEmailHandler(logger *slog.Logger, mailer Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if mailer == nil {
			logger.Info("send email (no relay configured)",
				slog.String("to", payload.To),
				slog.String("subject", payload.Subject))
			return nil
		}
		if err := mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			return err
		}
		logger.Info("email sent",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
		return nil
	}
}
