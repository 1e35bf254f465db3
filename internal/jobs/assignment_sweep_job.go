package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AssignmentSweepJob periodically releases assignments whose acceptance
// window elapsed. The sweep also runs inline before courier-facing reads;
// this job only bounds how long an expired proposal can linger when the
// courier never comes back.
type AssignmentSweepJob struct {
	handler commands.SweepExpiredAssignmentsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewAssignmentSweepJob creates a job running the expiry sweep every 30 seconds.
func NewAssignmentSweepJob(
	handler commands.SweepExpiredAssignmentsCommandHandler,
	logger *slog.Logger,
) *AssignmentSweepJob {
	return &AssignmentSweepJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "assignment_sweep_job"),
	}
}

// Start begins the sweep job to run every 30 seconds.
func (j *AssignmentSweepJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewSweepExpiredAssignmentsCommand()

		released, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Assignment sweep job failed", "error", err)
			return
		}

		if released > 0 {
			j.logger.InfoContext(ctx, "Released expired assignments", "count", released)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Assignment sweep job started (running every 30 seconds)")
	return nil
}

// Stop stops the sweep job.
func (j *AssignmentSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Assignment sweep job stopped")
}
