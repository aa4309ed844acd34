package holdings

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/database"
	"github.com/vmi/dashboard/internal/domain"
)

// PriceLookup resolves live quotes for a batch of symbols
type PriceLookup interface {
	Lookup(ctx context.Context, symbols []string) (map[string]domain.PriceQuote, map[string]string)
}

// AccountEnsurer finds or creates the account a manually entered row belongs to
type AccountEnsurer interface {
	EnsureByType(ctx context.Context, q database.Querier, userID int64, accountType string) (*domain.Account, error)
}

// Amount is a number that may arrive as a JSON number, a numeric string, or blank
type Amount struct {
	Value *float64
}

// UnmarshalJSON accepts 12.5, "12.5", "", and null
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.Value = nil
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			a.Value = nil
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number %q", raw)
	}
	a.Value = &v
	return nil
}

// MarshalJSON writes the number or null
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*a.Value)
}

// Row is one manually entered holdings table row
type Row struct {
	AccountType string `json:"accountType"`
	Ticker      string `json:"ticker"`
	Shares      Amount `json:"shares"`
	PricePaid   Amount `json:"pricePaid"`
}

// IsEmpty reports whether the row carries no data at all
func (r Row) IsEmpty() bool {
	return strings.TrimSpace(r.AccountType) == "" && strings.TrimSpace(r.Ticker) == "" &&
		r.Shares.Value == nil && r.PricePaid.Value == nil
}

// Summary is the valued portfolio with its render-ready cards
type Summary struct {
	Holdings    []domain.Holding   `json:"holdings"`
	Evaluations []Evaluation       `json:"evaluations"`
	Cards       []Card             `json:"cards"`
	Prices      map[string]float64 `json:"prices"`
	PriceErrors map[string]string  `json:"priceErrors"`
	Totals      Totals             `json:"totals"`
	TotalsCard  TotalsCard         `json:"totalsCard"`
}

// Service implements holding use cases
type Service struct {
	db       *database.DB
	repo     *Repository
	accounts AccountEnsurer
	prices   PriceLookup
	log      zerolog.Logger
}

// NewService creates a new holdings service
func NewService(db *database.DB, repo *Repository, accounts AccountEnsurer, prices PriceLookup, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		accounts: accounts,
		prices:   prices,
		log:      log.With().Str("service", "holdings").Logger(),
	}
}

// List returns every holding for userID
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Holding, error) {
	return s.repo.List(ctx, userID)
}

// GetByTicker returns the holding for symbol
func (s *Service) GetByTicker(ctx context.Context, userID int64, symbol string) (*domain.Holding, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, domain.NewValidationError("ticker", "is required")
	}
	return s.repo.GetByTicker(ctx, userID, symbol)
}

// UpdateNotes trims notes and stores them; blank notes are cleared
func (s *Service) UpdateNotes(ctx context.Context, userID, id int64, notes string) error {
	if id <= 0 {
		return domain.NewValidationError("id", "must be a positive integer")
	}
	var value *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		value = &trimmed
	}
	return s.repo.UpdateNotes(ctx, userID, id, value)
}

// ClearAll deletes every holding for userID
func (s *Service) ClearAll(ctx context.Context, userID int64) (int64, error) {
	return s.repo.DeleteAll(ctx, s.db.Conn(), userID)
}

// SaveRows upserts manually entered rows keyed by (account type, ticker).
// Blank rows are skipped. Saving no rows at all clears the table.
// Returns the number of rows written.
func (s *Service) SaveRows(ctx context.Context, userID int64, rows []Row) (int, error) {
	pending := make([]Row, 0, len(rows))
	for i, row := range rows {
		if row.IsEmpty() {
			continue
		}
		if err := validateRow(row); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		pending = append(pending, row)
	}

	if len(pending) == 0 {
		_, err := s.ClearAll(ctx, userID)
		return 0, err
	}

	err := database.WithTransaction(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		for _, row := range pending {
			if err := s.upsertRow(ctx, tx, userID, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int("rows", len(pending)).Msg("Saved holdings rows")
	return len(pending), nil
}

func validateRow(row Row) error {
	if strings.TrimSpace(row.AccountType) == "" {
		return domain.NewValidationError("accountType", "is required")
	}
	if strings.TrimSpace(row.Ticker) == "" {
		return domain.NewValidationError("ticker", "is required")
	}
	if row.Shares.Value != nil && *row.Shares.Value < 0 {
		return domain.NewValidationError("shares", "must not be negative")
	}
	if row.PricePaid.Value != nil && *row.PricePaid.Value < 0 {
		return domain.NewValidationError("pricePaid", "must not be negative")
	}
	return nil
}

func (s *Service) upsertRow(ctx context.Context, tx *sql.Tx, userID int64, row Row) error {
	account, err := s.accounts.EnsureByType(ctx, tx, userID, strings.TrimSpace(row.AccountType))
	if err != nil {
		return err
	}

	symbol := strings.ToUpper(strings.TrimSpace(row.Ticker))
	cost := 0.0
	if row.Shares.Value != nil && row.PricePaid.Value != nil {
		cost = *row.Shares.Value * *row.PricePaid.Value
	}

	existing, err := s.repo.GetByAccountSymbol(ctx, tx, account.ID, symbol)
	switch {
	case err == nil:
		existing.TotalShares = row.Shares.Value
		existing.PricePaid = row.PricePaid.Value
		existing.AvgCostPerShare = row.PricePaid.Value
		existing.TotalCostBasis = cost
		return s.repo.UpdatePosition(ctx, tx, existing)
	case errors.Is(err, domain.ErrNotFound):
		h := &domain.Holding{
			UserID:          userID,
			AccountID:       account.ID,
			Symbol:          &symbol,
			TotalShares:     row.Shares.Value,
			PricePaid:       row.PricePaid.Value,
			AvgCostPerShare: row.PricePaid.Value,
			TotalCostBasis:  cost,
		}
		_, err := s.repo.Create(ctx, tx, h)
		return err
	default:
		return err
	}
}

// Summary values every holding against live prices
func (s *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	holdings, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if sym := h.SymbolOrEmpty(); sym != "" {
			symbols = append(symbols, sym)
		}
	}

	quotes := map[string]domain.PriceQuote{}
	priceErrors := map[string]string{}
	if len(symbols) > 0 && s.prices != nil {
		quotes, priceErrors = s.prices.Lookup(ctx, symbols)
	}

	out := &Summary{
		Holdings:    holdings,
		Evaluations: make([]Evaluation, 0, len(holdings)),
		Cards:       make([]Card, 0, len(holdings)),
		Prices:      make(map[string]float64, len(quotes)),
		PriceErrors: priceErrors,
	}
	for sym, q := range quotes {
		out.Prices[sym] = q.Price
	}

	for _, h := range holdings {
		var price *float64
		if q, ok := quotes[strings.ToUpper(h.SymbolOrEmpty())]; ok {
			p := q.Price
			price = &p
		}
		e := Evaluate(h, price)
		out.Evaluations = append(out.Evaluations, e)
		out.Cards = append(out.Cards, BuildCard(h, e))
	}

	out.Totals = ComputeTotals(out.Evaluations)
	out.TotalsCard = BuildTotalsCard(out.Totals)
	return out, nil
}
