package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/database"
)

// CheckDatabaseJob pings the database and, for SQLite, runs an integrity check
type CheckDatabaseJob struct {
	log zerolog.Logger
	db  *database.DB
}

// NewCheckDatabaseJob creates a new CheckDatabaseJob
func NewCheckDatabaseJob(db *database.DB, log zerolog.Logger) *CheckDatabaseJob {
	return &CheckDatabaseJob{
		log: log.With().Str("job", "check_database").Logger(),
		db:  db,
	}
}

// Name returns the job name
func (j *CheckDatabaseJob) Name() string {
	return "check_database"
}

// Run executes the check
func (j *CheckDatabaseJob) Run() error {
	if j.db == nil {
		j.log.Warn().Msg("Database not initialized, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		return err
	}

	if j.db.Dialect() == database.DialectSQLite {
		var result string
		if err := j.db.Conn().QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
			return fmt.Errorf("integrity check failed: %w", err)
		}
		if result != "ok" {
			// corruption cannot be repaired automatically
			return fmt.Errorf("integrity check returned: %s", result)
		}
	}

	j.log.Debug().Str("database", j.db.Name()).Msg("Database check passed")
	return nil
}
