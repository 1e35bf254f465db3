package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OrderCleanupJob removes delivered and cancelled orders past the retention
// period. Runs hourly.
type OrderCleanupJob struct {
	handler   commands.PurgeTerminatedOrdersCommandHandler
	retention time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOrderCleanupJob creates a job purging terminal orders older than retention.
func NewOrderCleanupJob(
	handler commands.PurgeTerminatedOrdersCommandHandler,
	retention time.Duration,
	logger *slog.Logger,
) *OrderCleanupJob {
	return &OrderCleanupJob{
		handler:   handler,
		retention: retention,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "order_cleanup_job"),
	}
}

// Start begins the cleanup job to run at the top of every hour.
func (j *OrderCleanupJob) Start() error {
	_, err := j.cron.AddFunc("0 0 * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewPurgeTerminatedOrdersCommand(j.retention)
		if err != nil {
			j.logger.ErrorContext(ctx, "Order cleanup job misconfigured", "error", err)
			return
		}

		removed, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Order cleanup job failed", "error", err)
			return
		}

		if removed > 0 {
			j.logger.InfoContext(ctx, "Purged terminated orders", "count", removed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order cleanup job started (running hourly)")
	return nil
}

// Stop stops the cleanup job.
func (j *OrderCleanupJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Order cleanup job stopped")
}
