// Package retention enforces the usage retention window.
//
// A Pruner removes records older than RetentionDays, optionally archiving
// them as JSON first. A Scheduler runs the pruner on a cron expression:
//
//	pruner := retention.NewPruner(store, cfg.Retention, logger, collector)
//	sched := retention.NewScheduler(pruner, cfg.Retention.PruneSchedule, logger)
//	if err := sched.Start(ctx); err != nil {
//		return err
//	}
//	defer sched.Stop()
//
// RetentionDays 0 keeps records forever.
package retention
