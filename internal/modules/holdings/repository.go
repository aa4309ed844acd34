package holdings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/database"
	"github.com/vmi/dashboard/internal/domain"
)

const selectHoldings = `
	SELECT h.id, h.user_id, h.account_id, h.symbol, h.total_shares, h.total_cost_basis,
		h.price_paid, h.avg_cost_per_share, h.is_baseline, h.notes, h.updated_at,
		a.account_type, a.nickname
	FROM holdings h
	LEFT JOIN accounts a ON h.account_id = a.id`

// Repository handles holding database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new holding repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// List returns every holding owned by userID ordered by symbol
func (r *Repository) List(ctx context.Context, userID int64) ([]domain.Holding, error) {
	rows, err := r.db.Conn().QueryContext(ctx, r.db.Rebind(selectHoldings+`
		WHERE h.user_id = ?
		ORDER BY h.symbol, h.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := make([]domain.Holding, 0)
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}

// GetByTicker returns the first holding for symbol (case-insensitive), or ErrNotFound
func (r *Repository) GetByTicker(ctx context.Context, userID int64, symbol string) (*domain.Holding, error) {
	row := r.db.Conn().QueryRowContext(ctx, r.db.Rebind(selectHoldings+`
		WHERE h.user_id = ? AND h.symbol = ?
		ORDER BY h.id LIMIT 1`), userID, strings.ToUpper(strings.TrimSpace(symbol)))
	return scanHolding(row)
}

// GetByAccountSymbol returns the holding for symbol in one account, or ErrNotFound
func (r *Repository) GetByAccountSymbol(ctx context.Context, q database.Querier, accountID int64, symbol string) (*domain.Holding, error) {
	row := q.QueryRowContext(ctx, r.db.Rebind(selectHoldings+`
		WHERE h.account_id = ? AND h.symbol = ?
		ORDER BY h.id LIMIT 1`), accountID, symbol)
	return scanHolding(row)
}

// Create inserts a holding and returns its id. q may be a transaction.
func (r *Repository) Create(ctx context.Context, q database.Querier, h *domain.Holding) (int64, error) {
	now := database.Now()

	var id int64
	err := q.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO holdings (
			user_id, account_id, symbol, price_paid, total_cost_basis, total_shares,
			avg_cost_per_share, is_baseline, notes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`),
		h.UserID, h.AccountID, nullString(h.Symbol), nullFloat(h.PricePaid), h.TotalCostBasis,
		nullFloat(h.TotalShares), nullFloat(h.AvgCostPerShare), h.IsBaseline, nullString(h.Notes),
		now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert holding: %w", err)
	}

	h.ID = id
	return id, nil
}

// UpdatePosition rewrites the share count, cost basis and prices of a holding
func (r *Repository) UpdatePosition(ctx context.Context, q database.Querier, h *domain.Holding) error {
	res, err := q.ExecContext(ctx, r.db.Rebind(`
		UPDATE holdings
		SET total_shares = ?, total_cost_basis = ?, price_paid = ?, avg_cost_per_share = ?, updated_at = ?
		WHERE id = ?
	`), nullFloat(h.TotalShares), h.TotalCostBasis, nullFloat(h.PricePaid), nullFloat(h.AvgCostPerShare),
		database.Now(), h.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding %d: %w", h.ID, err)
	}
	return expectOne(res, h.ID)
}

// UpdateNotes replaces the notes of a holding; nil clears them
func (r *Repository) UpdateNotes(ctx context.Context, userID, id int64, notes *string) error {
	res, err := r.db.Conn().ExecContext(ctx, r.db.Rebind(`
		UPDATE holdings SET notes = ?, updated_at = ? WHERE user_id = ? AND id = ?
	`), nullString(notes), database.Now(), userID, id)
	if err != nil {
		return fmt.Errorf("failed to update notes for holding %d: %w", id, err)
	}
	return expectOne(res, id)
}

// DeleteAll removes every holding owned by userID and returns how many were removed
func (r *Repository) DeleteAll(ctx context.Context, q database.Querier, userID int64) (int64, error) {
	res, err := q.ExecContext(ctx, r.db.Rebind(`DELETE FROM holdings WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete holdings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted holdings: %w", err)
	}
	r.log.Info().Int64("user_id", userID).Int64("deleted", n).Msg("Cleared holdings")
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanHolding(s scanner) (*domain.Holding, error) {
	var (
		h                      domain.Holding
		symbol, notes          sql.NullString
		accountType, nickname  sql.NullString
		shares, pricePaid, avg sql.NullFloat64
		updatedAt              sql.NullString
	)
	err := s.Scan(
		&h.ID, &h.UserID, &h.AccountID, &symbol, &shares, &h.TotalCostBasis,
		&pricePaid, &avg, &h.IsBaseline, &notes, &updatedAt,
		&accountType, &nickname,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if symbol.Valid {
		h.Symbol = &symbol.String
	}
	if notes.Valid {
		h.Notes = &notes.String
	}
	if shares.Valid {
		h.TotalShares = &shares.Float64
	}
	if pricePaid.Valid {
		h.PricePaid = &pricePaid.Float64
	}
	if avg.Valid {
		h.AvgCostPerShare = &avg.Float64
	}
	if updatedAt.Valid {
		h.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
	}
	h.AccountType = accountType.String
	h.AccountLabel = nickname.String
	return &h, nil
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("holding %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
