package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TaskHandler binds a task type to its Asynq handler.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration schedules a prepared task on a cron expression.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Mailer    Mailer
	Handlers  []TaskHandler
	Cron      []CronRegistration
}

// Worker runs the background task server and, when cron entries are
// registered, the scheduler that feeds it.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// NewWorker builds a Worker from the given handlers and cron entries. The
// send-email handler is always registered; everything else is injected so
// the worker binary decides which scans it runs.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			cfg.Logger.Error("task failed",
				slog.String("type", task.Type()),
				slog.Any("error", err))
		}),
		ShutdownTimeout: 30 * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSendEmail, NewSendEmailHandler(cfg.Logger, cfg.Mailer))
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	w := &Worker{server: srv, mux: mux, logger: cfg.Logger}
	if len(cfg.Cron) == 0 {
		return w, nil
	}

	w.scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	for _, entry := range cfg.Cron {
		if entry.Spec == "" || entry.Task == nil {
			continue
		}
		id, err := w.scheduler.Register(entry.Spec, entry.Task, entry.Options...)
		if err != nil {
			return nil, err
		}
		cfg.Logger.Info("cron registered",
			slog.String("entry", id),
			slog.String("spec", entry.Spec),
			slog.String("task", entry.Task.Type()))
	}
	return w, nil
}

// Run processes tasks until the context is cancelled, then drains in-flight
// work before returning.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return errors.New("jobs: worker not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
		defer w.scheduler.Shutdown()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- w.server.Run(w.mux) }()

	select {
	case <-ctx.Done():
		w.logger.Info("worker shutting down")
		w.server.Shutdown()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client enqueues tasks for the worker.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client on the shared Redis broker.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueSendEmail enqueues a send-email task on the default queue.
func (c *Client) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
