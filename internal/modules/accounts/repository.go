// Package accounts persists the brokerage and retirement accounts holdings belong to.
package accounts

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

// Repository handles account database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new account repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "accounts").Logger(),
	}
}

// Create inserts an account and returns its id. q may be a transaction.
func (r *Repository) Create(ctx context.Context, q database.Querier, a *domain.Account) (int64, error) {
	if strings.TrimSpace(a.AccountType) == "" {
		return 0, domain.NewValidationError("accountType", "is required")
	}
	if a.Currency == "" {
		a.Currency = domain.CurrencyUSD
	}

	var nickname interface{}
	if a.Nickname != "" {
		nickname = a.Nickname
	}

	var id int64
	err := q.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO accounts (user_id, account_type, nickname, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), a.UserID, a.AccountType, nickname, string(a.Currency), database.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert account: %w", err)
	}

	a.ID = id
	r.log.Debug().Int64("account_id", id).Str("account_type", a.AccountType).Msg("Account created")
	return id, nil
}

// GetByID returns one account owned by userID
func (r *Repository) GetByID(ctx context.Context, userID, id int64) (*domain.Account, error) {
	row := r.db.Conn().QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, user_id, account_type, nickname, currency, created_at
		FROM accounts WHERE user_id = ? AND id = ?
	`), userID, id)
	return scanAccount(row)
}

// FindByType returns the oldest account of the given type, or ErrNotFound
func (r *Repository) FindByType(ctx context.Context, q database.Querier, userID int64, accountType string) (*domain.Account, error) {
	row := q.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, user_id, account_type, nickname, currency, created_at
		FROM accounts WHERE user_id = ? AND account_type = ?
		ORDER BY id LIMIT 1
	`), userID, accountType)
	return scanAccount(row)
}

// EnsureByType returns the account of the given type, creating it when missing
func (r *Repository) EnsureByType(ctx context.Context, q database.Querier, userID int64, accountType string) (*domain.Account, error) {
	a, err := r.FindByType(ctx, q, userID, accountType)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	a = &domain.Account{UserID: userID, AccountType: accountType, Currency: domain.CurrencyUSD}
	if _, err := r.Create(ctx, q, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns every account owned by userID
func (r *Repository) List(ctx context.Context, userID int64) ([]domain.Account, error) {
	rows, err := r.db.Conn().QueryContext(ctx, r.db.Rebind(`
		SELECT id, user_id, account_type, nickname, currency, created_at
		FROM accounts WHERE user_id = ? ORDER BY id
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(s scanner) (*domain.Account, error) {
	var (
		a         domain.Account
		nickname  sql.NullString
		currency  string
		createdAt string
	)
	err := s.Scan(&a.ID, &a.UserID, &a.AccountType, &nickname, &currency, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	a.Nickname = nickname.String
	a.Currency = domain.Currency(currency)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}
