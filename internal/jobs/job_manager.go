package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	assignmentSweepJob *AssignmentSweepJob
	orderCleanupJob    *OrderCleanupJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	sweepHandler commands.SweepExpiredAssignmentsCommandHandler,
	purgeHandler commands.PurgeTerminatedOrdersCommandHandler,
	retention time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		assignmentSweepJob: NewAssignmentSweepJob(sweepHandler, logger),
		orderCleanupJob:    NewOrderCleanupJob(purgeHandler, retention, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.assignmentSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start assignment sweep job: %w", err)
	}

	if err := jm.orderCleanupJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.assignmentSweepJob.Stop()
		return fmt.Errorf("failed to start order cleanup job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.orderCleanupJob.Stop()
	jm.assignmentSweepJob.Stop()
}
