// Package transactions records ledger entries and applies trades to holdings.
package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/database"
	"github.com/vmi/dashboard/internal/domain"
)

// Filter narrows a ledger listing; zero values match everything
type Filter struct {
	Symbol    string
	AccountID int64
}

// Repository handles transaction database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new transaction repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

// Insert stores t with a fresh UUID and returns the new row id. q may be a transaction.
func (r *Repository) Insert(ctx context.Context, q database.Querier, t *domain.Transaction) (int64, error) {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	now := database.Now()

	var id int64
	err := q.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO transactions (
			uuid, user_id, account_id, symbol, transaction_type, transaction_date,
			shares, price, fees, notes, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`),
		t.UUID, t.UserID, t.AccountID, nullString(t.Symbol), string(t.TransactionType), t.TransactionDate,
		nullFloat(t.Shares), nullFloat(t.Price), t.Fees, nullString(t.Notes), now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	t.ID = id
	t.CreatedAt, _ = time.Parse(time.RFC3339, now)
	r.log.Debug().
		Int64("transaction_id", id).
		Str("type", string(t.TransactionType)).
		Msg("Transaction recorded")
	return id, nil
}

// GetByID returns one transaction owned by userID
func (r *Repository) GetByID(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	row := r.db.Conn().QueryRowContext(ctx, r.db.Rebind(selectTransactions+`
		WHERE user_id = ? AND id = ?`), userID, id)
	return scanTransaction(row)
}

// List returns the ledger newest first
func (r *Repository) List(ctx context.Context, userID int64, f Filter) ([]domain.Transaction, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []interface{}{userID}
	)
	if f.AccountID > 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if sym := strings.ToUpper(strings.TrimSpace(f.Symbol)); sym != "" {
		where = append(where, "symbol = ?")
		args = append(args, sym)
	}

	query := selectTransactions + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY transaction_date DESC, id DESC"
	rows, err := r.db.Conn().QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return out, nil
}

const selectTransactions = `
	SELECT id, uuid, user_id, account_id, symbol, transaction_type, transaction_date,
		shares, price, fees, notes, created_at
	FROM transactions`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var (
		t             domain.Transaction
		symbol, notes sql.NullString
		shares, price sql.NullFloat64
		txType        string
		createdAt     string
	)
	err := s.Scan(&t.ID, &t.UUID, &t.UserID, &t.AccountID, &symbol, &txType, &t.TransactionDate,
		&shares, &price, &t.Fees, &notes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	t.TransactionType = domain.TransactionType(txType)
	if symbol.Valid {
		t.Symbol = &symbol.String
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	if shares.Valid {
		t.Shares = &shares.Float64
	}
	if price.Valid {
		t.Price = &price.Float64
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
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
