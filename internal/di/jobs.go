package di

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/config"
	"github.com/vmi/dashboard/internal/scheduler"
)

// Job schedules
const (
	checkDatabaseSchedule    = "@every 6h"
	contributionsDueSchedule = "0 8 * * *"
	backupTimeout            = 10 * time.Minute
)

// RegisterJobs creates the scheduler and registers the maintenance jobs.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	sched := scheduler.New(log)

	if err := sched.AddJob(checkDatabaseSchedule, scheduler.NewCheckDatabaseJob(container.DB, log)); err != nil {
		return err
	}

	due := scheduler.NewContributionsDueJob(container.ContributionRepo, cfg.DefaultUserID, 24*time.Hour, log)
	if err := sched.AddJob(contributionsDueSchedule, due); err != nil {
		return err
	}

	if container.BackupService != nil {
		if err := sched.AddJob(cfg.BackupSchedule, scheduler.NewBackupJob(container.BackupService, backupTimeout, log)); err != nil {
			return err
		}
	}

	container.Scheduler = sched
	return nil
}
