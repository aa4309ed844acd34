package contributions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/database"
	"github.com/vmi/dashboard/internal/domain"
)

// Repository handles contribution schedule database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
	now func() time.Time
}

// NewRepository creates a new contribution schedule repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "contributions").Logger(),
		now: time.Now,
	}
}

// Insert stores a schedule and returns its id. q may be a transaction.
func (r *Repository) Insert(ctx context.Context, q database.Querier, s *domain.ContributionSchedule) (int64, error) {
	if s.Amount <= 0 {
		return 0, domain.NewValidationError("amount", "must be positive")
	}
	freq := strings.ToLower(strings.TrimSpace(s.Frequency))
	if freq == "" {
		return 0, domain.NewValidationError("frequency", "is required")
	}

	var id int64
	err := q.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO contribution_schedules (user_id, account_id, amount, frequency, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING schedule_id
	`), s.UserID, s.AccountID, s.Amount, freq, database.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contribution schedule: %w", err)
	}

	s.ScheduleID = id
	s.Frequency = freq
	return id, nil
}

// List returns every schedule for userID, newest first, with NextDue filled in
func (r *Repository) List(ctx context.Context, userID int64) ([]domain.ContributionSchedule, error) {
	rows, err := r.db.Conn().QueryContext(ctx, r.db.Rebind(`
		SELECT c.schedule_id, c.user_id, c.account_id, c.amount, c.frequency, c.created_at,
			a.account_type, a.nickname
		FROM contribution_schedules c
		LEFT JOIN accounts a ON c.account_id = a.id
		WHERE c.user_id = ?
		ORDER BY c.created_at DESC, c.schedule_id DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contribution schedules: %w", err)
	}
	defer rows.Close()

	now := r.now()
	out := make([]domain.ContributionSchedule, 0)
	for rows.Next() {
		var (
			s                     domain.ContributionSchedule
			createdAt             string
			accountType, nickname sql.NullString
		)
		if err := rows.Scan(&s.ScheduleID, &s.UserID, &s.AccountID, &s.Amount, &s.Frequency, &createdAt,
			&accountType, &nickname); err != nil {
			return nil, fmt.Errorf("failed to scan contribution schedule: %w", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.AccountType = accountType.String
		s.AccountLabel = nickname.String
		s.NextDue = NextDue(s.Frequency, now)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contribution schedules: %w", err)
	}
	return out, nil
}
