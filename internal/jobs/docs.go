// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the delivery service.
//
// # Available Jobs
//
// 1. AssignmentSweepJob - Runs every 30 seconds to release assignments whose acceptance window elapsed
// 2. OrderCleanupJob - Runs hourly to purge delivered and cancelled orders past retention
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(sweepHandler, purgeHandler, retention, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweep is deliberately coarse: courier-facing reads run the same sweep
// inline, so the cron pass only bounds how stale an abandoned proposal can
// get. The cleanup job is a retention policy, not a correctness mechanism.
//
// # Error Handling
//
// - Both jobs log failures and retry on the next tick
// - Failed job starts will stop any already running jobs
package jobs
