package baseline

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

const defaultTransactionNotes = "Baseline imported balance"

// AccountCreator inserts the onboarded account
type AccountCreator interface {
	Create(ctx context.Context, q database.Querier, a *domain.Account) (int64, error)
}

// HoldingCreator inserts the baseline holding
type HoldingCreator interface {
	Create(ctx context.Context, q database.Querier, h *domain.Holding) (int64, error)
}

// TransactionInserter records the BASELINE ledger entry
type TransactionInserter interface {
	Insert(ctx context.Context, q database.Querier, t *domain.Transaction) (int64, error)
}

// ScheduleInserter stores the optional contribution plan
type ScheduleInserter interface {
	Insert(ctx context.Context, q database.Querier, s *domain.ContributionSchedule) (int64, error)
}

// Result identifies the rows created by onboarding
type Result struct {
	Derivation    Derivation `json:"derivation"`
	AccountID     int64      `json:"accountId"`
	HoldingID     int64      `json:"holdingId"`
	TransactionID int64      `json:"transactionId"`
	ScheduleID    int64      `json:"scheduleId,omitempty"`
}

// Service onboards an account from a value snapshot
type Service struct {
	db           *database.DB
	quotes       domain.QuoteProvider
	accounts     AccountCreator
	holdings     HoldingCreator
	transactions TransactionInserter
	schedules    ScheduleInserter
	log          zerolog.Logger
	now          func() time.Time
}

// NewService creates a new baseline service. quotes may be nil, in which case
// no live price is looked up.
func NewService(
	db *database.DB,
	quotes domain.QuoteProvider,
	accounts AccountCreator,
	holdings HoldingCreator,
	transactions TransactionInserter,
	schedules ScheduleInserter,
	log zerolog.Logger,
) *Service {
	return &Service{
		db:           db,
		quotes:       quotes,
		accounts:     accounts,
		holdings:     holdings,
		transactions: transactions,
		schedules:    schedules,
		log:          log.With().Str("service", "baseline").Logger(),
		now:          time.Now,
	}
}

// Create derives the holding and writes account, holding, BASELINE
// transaction and optional contribution schedule in one database transaction.
// Any failure, the schedule insert included, rolls everything back.
func (s *Service) Create(ctx context.Context, userID int64, in Input) (*Result, error) {
	if strings.TrimSpace(in.AccountType) == "" {
		return nil, domain.NewValidationError("accountType", "is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ticker := in.Ticker()
	if in.KnownShares == nil && in.LivePrice == nil && ticker != "" && s.quotes != nil {
		quote, err := s.quotes.Quote(ctx, ticker)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", ticker).Msg("Live price lookup failed, storing value only")
		} else if quote.Price > 0 {
			price := quote.Price
			in.LivePrice = &price
		}
	}

	derivation, err := Derive(in)
	if err != nil {
		return nil, err
	}

	result := &Result{Derivation: derivation}
	err = database.WithTransaction(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		account := &domain.Account{
			UserID:      userID,
			AccountType: strings.TrimSpace(in.AccountType),
			Nickname:    strings.TrimSpace(in.AccountLabel),
			Currency:    domain.CurrencyUSD,
		}
		accountID, err := s.accounts.Create(ctx, tx, account)
		if err != nil {
			return err
		}
		result.AccountID = accountID

		holding := &domain.Holding{
			UserID:          userID,
			AccountID:       accountID,
			Symbol:          optional(ticker),
			PricePaid:       derivation.AvgCostPerShare,
			TotalCostBasis:  in.AccountValue,
			TotalShares:     derivation.TotalShares,
			AvgCostPerShare: derivation.AvgCostPerShare,
			IsBaseline:      true,
			Notes:           optional(strings.TrimSpace(in.Notes)),
		}
		if result.HoldingID, err = s.holdings.Create(ctx, tx, holding); err != nil {
			return err
		}

		notes := strings.TrimSpace(in.Notes)
		if notes == "" {
			notes = defaultTransactionNotes
		}
		entry := &domain.Transaction{
			UserID:          userID,
			AccountID:       accountID,
			Symbol:          optional(ticker),
			TransactionType: domain.TransactionTypeBaseline,
			TransactionDate: s.now().Format("2006-01-02"),
			Shares:          derivation.TotalShares,
			Price:           derivation.AvgCostPerShare,
			Notes:           &notes,
		}
		if result.TransactionID, err = s.transactions.Insert(ctx, tx, entry); err != nil {
			return err
		}

		if c := in.Contribution; c != nil && c.Amount > 0 && strings.TrimSpace(c.Frequency) != "" {
			schedule := &domain.ContributionSchedule{
				UserID:    userID,
				AccountID: accountID,
				Amount:    c.Amount,
				Frequency: c.Frequency,
			}
			if result.ScheduleID, err = s.schedules.Insert(ctx, tx, schedule); err != nil {
				return fmt.Errorf("failed to save contribution schedule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("baseline onboarding failed: %w", err)
	}

	s.log.Info().
		Int64("account_id", result.AccountID).
		Int64("holding_id", result.HoldingID).
		Str("symbol", ticker).
		Bool("price_proxy", derivation.PricePaidUsedAsProxy).
		Msg("Baseline account created")
	return result, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
