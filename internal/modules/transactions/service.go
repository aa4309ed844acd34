package transactions

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

// PositionStore reads and writes the holding a trade applies to
type PositionStore interface {
	GetByAccountSymbol(ctx context.Context, q database.Querier, accountID int64, symbol string) (*domain.Holding, error)
	Create(ctx context.Context, q database.Querier, h *domain.Holding) (int64, error)
	UpdatePosition(ctx context.Context, q database.Querier, h *domain.Holding) error
}

// AccountLookup confirms an account belongs to the user
type AccountLookup interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.Account, error)
}

// PostRequest is a ledger posting as submitted by a client
type PostRequest struct {
	Shares          *float64 `json:"shares"`
	Price           *float64 `json:"price"`
	Fees            *float64 `json:"fees"`
	Notes           *string  `json:"notes"`
	TransactionType string   `json:"transactionType"`
	TransactionDate string   `json:"transactionDate"`
	Symbol          string   `json:"symbol"`
	AccountID       int64    `json:"accountId"`
}

var knownTypes = map[domain.TransactionType]bool{
	domain.TransactionTypeBaseline:     true,
	domain.TransactionTypeBuy:          true,
	domain.TransactionTypeSell:         true,
	domain.TransactionTypeDividend:     true,
	domain.TransactionTypeContribution: true,
}

// Validate checks required fields and returns the normalized transaction
func (p PostRequest) Validate(userID int64) (*domain.Transaction, error) {
	if p.AccountID <= 0 {
		return nil, domain.NewValidationError("accountId", "is required")
	}
	txType := domain.ParseTransactionType(p.TransactionType)
	if txType == "" {
		return nil, domain.NewValidationError("transactionType", "is required")
	}
	if !knownTypes[txType] {
		return nil, domain.NewValidationError("transactionType", fmt.Sprintf("unknown type %q", p.TransactionType))
	}
	date := strings.TrimSpace(p.TransactionDate)
	if date == "" {
		return nil, domain.NewValidationError("transactionDate", "is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, domain.NewValidationError("transactionDate", "must be YYYY-MM-DD")
	}

	t := &domain.Transaction{
		UserID:          userID,
		AccountID:       p.AccountID,
		TransactionType: txType,
		TransactionDate: date,
		Shares:          p.Shares,
		Price:           p.Price,
		Notes:           p.Notes,
	}
	if p.Fees != nil {
		if *p.Fees < 0 {
			return nil, domain.NewValidationError("fees", "must not be negative")
		}
		t.Fees = *p.Fees
	}
	if sym := strings.ToUpper(strings.TrimSpace(p.Symbol)); sym != "" {
		t.Symbol = &sym
	}

	if txType.RequiresInstrument() {
		if t.Symbol == nil {
			return nil, domain.NewValidationError("symbol", "is required for "+string(txType))
		}
		if t.Shares == nil || *t.Shares <= 0 {
			return nil, domain.NewValidationError("shares", "must be positive")
		}
		if t.Price == nil || *t.Price <= 0 {
			return nil, domain.NewValidationError("price", "must be positive")
		}
	}
	return t, nil
}

// Service posts transactions and keeps holdings in step with trades
type Service struct {
	db        *database.DB
	repo      *Repository
	accounts  AccountLookup
	positions PositionStore
	log       zerolog.Logger
}

// NewService creates a new transaction service
func NewService(db *database.DB, repo *Repository, accounts AccountLookup, positions PositionStore, log zerolog.Logger) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		accounts:  accounts,
		positions: positions,
		log:       log.With().Str("service", "transactions").Logger(),
	}
}

// List returns the ledger for userID
func (s *Service) List(ctx context.Context, userID int64, f Filter) ([]domain.Transaction, error) {
	return s.repo.List(ctx, userID, f)
}

// Post validates and records a transaction. BUY and SELL also update the
// account's holding for the symbol in the same database transaction.
func (s *Service) Post(ctx context.Context, userID int64, req PostRequest) (*domain.Transaction, error) {
	t, err := req.Validate(userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetByID(ctx, userID, t.AccountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("accountId", fmt.Sprintf("account %d does not exist", t.AccountID))
		}
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		if _, err := s.repo.Insert(ctx, tx, t); err != nil {
			return err
		}
		switch t.TransactionType {
		case domain.TransactionTypeBuy, domain.TransactionTypeSell:
			return s.applyTrade(ctx, tx, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("transaction_id", t.ID).
		Str("type", string(t.TransactionType)).
		Int64("account_id", t.AccountID).
		Msg("Transaction posted")
	return t, nil
}

func (s *Service) applyTrade(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	symbol := *t.Symbol
	h, err := s.positions.GetByAccountSymbol(ctx, tx, t.AccountID, symbol)
	if errors.Is(err, domain.ErrNotFound) {
		if t.TransactionType == domain.TransactionTypeSell {
			return domain.NewValidationError("shares", "no position in "+symbol+" to sell")
		}
		h = &domain.Holding{UserID: t.UserID, AccountID: t.AccountID, Symbol: &symbol}
		if err := ApplyTrade(h, t); err != nil {
			return err
		}
		_, err = s.positions.Create(ctx, tx, h)
		return err
	}
	if err != nil {
		return err
	}

	if err := ApplyTrade(h, t); err != nil {
		return err
	}
	return s.positions.UpdatePosition(ctx, tx, h)
}

// ApplyTrade adjusts the shares, cost basis and average cost of h for a BUY
// or SELL. A BUY adds shares*price+fees to cost. A SELL removes cost in
// proportion to the shares sold and cannot exceed the shares held.
// A value-snapshot holding (cost basis without a share count) takes no
// trades until its details are filled in.
func ApplyTrade(h *domain.Holding, t *domain.Transaction) error {
	held := h.Shares()
	qty := *t.Shares

	isTrade := t.TransactionType == domain.TransactionTypeBuy || t.TransactionType == domain.TransactionTypeSell
	if isTrade && held <= 0 && h.TotalCostBasis > 0 {
		return domain.NewValidationError("symbol", fmt.Sprintf("%s holds a value snapshot without a share count; add its details before posting trades", h.SymbolOrEmpty()))
	}

	switch t.TransactionType {
	case domain.TransactionTypeBuy:
		held += qty
		h.TotalCostBasis += qty**t.Price + t.Fees
	case domain.TransactionTypeSell:
		if qty > held+1e-9 {
			return domain.NewValidationError("shares", fmt.Sprintf("cannot sell %g shares of %s, only %g held", qty, h.SymbolOrEmpty(), held))
		}
		if held > 0 {
			h.TotalCostBasis -= h.TotalCostBasis * (qty / held)
		}
		held -= qty
		if held < 1e-9 {
			held = 0
			h.TotalCostBasis = 0
		}
	default:
		return nil
	}

	if h.TotalCostBasis < 0 {
		h.TotalCostBasis = 0
	}
	h.TotalShares = &held
	if held > 0 {
		avg := h.TotalCostBasis / held
		h.AvgCostPerShare = &avg
		h.PricePaid = &avg
	} else {
		h.AvgCostPerShare = nil
	}
	return nil
}
