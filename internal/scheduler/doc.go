// Package scheduler runs the periodic maintenance jobs: the overdue sweep,
// the daily activity summary, and the archived-task purge. Schedules are
// cron expressions from configuration; each job is also callable directly
// so tests and operational tooling can trigger a run on demand.
package scheduler
