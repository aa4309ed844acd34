package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupRunner produces one backup and returns where it was stored
type BackupRunner interface {
	Run(ctx context.Context) (string, error)
}

// BackupJob uploads a database snapshot to object storage
type BackupJob struct {
	log     zerolog.Logger
	backups BackupRunner
	timeout time.Duration
}

// NewBackupJob creates a new BackupJob
func NewBackupJob(backups BackupRunner, timeout time.Duration, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		log:     log.With().Str("job", "backup").Logger(),
		backups: backups,
		timeout: timeout,
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	key, err := j.backups.Run(ctx)
	if err != nil {
		return err
	}

	j.log.Info().Str("key", key).Msg("Backup uploaded")
	return nil
}
