package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
)

// ScheduleLister lists contribution schedules with their next due date
type ScheduleLister interface {
	List(ctx context.Context, userID int64) ([]domain.ContributionSchedule, error)
}

// ContributionsDueJob logs every contribution falling due within the window
type ContributionsDueJob struct {
	log       zerolog.Logger
	schedules ScheduleLister
	userID    int64
	window    time.Duration
	now       func() time.Time
}

// NewContributionsDueJob creates a job reporting contributions due within window
func NewContributionsDueJob(schedules ScheduleLister, userID int64, window time.Duration, log zerolog.Logger) *ContributionsDueJob {
	return &ContributionsDueJob{
		log:       log.With().Str("job", "contributions_due").Logger(),
		schedules: schedules,
		userID:    userID,
		window:    window,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *ContributionsDueJob) Name() string {
	return "contributions_due"
}

// Run executes the job
func (j *ContributionsDueJob) Run() error {
	_, err := j.Due(context.Background())
	return err
}

// Due returns the schedules whose next due date falls within the window
func (j *ContributionsDueJob) Due(ctx context.Context) ([]domain.ContributionSchedule, error) {
	list, err := j.schedules.List(ctx, j.userID)
	if err != nil {
		return nil, err
	}

	cutoff := j.now().Add(j.window)
	due := make([]domain.ContributionSchedule, 0)
	for _, s := range list {
		if s.NextDue == nil || s.NextDue.After(cutoff) {
			continue
		}
		due = append(due, s)
		j.log.Info().
			Int64("schedule_id", s.ScheduleID).
			Str("account_type", s.AccountType).
			Float64("amount", s.Amount).
			Time("next_due", *s.NextDue).
			Msg("Contribution due")
	}
	return due, nil
}
