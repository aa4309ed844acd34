// Package domain provides core domain models and types.
package domain

import (
	"strings"
	"time"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
)

// TransactionType represents the kind of ledger posting
type TransactionType string

const (
	// TransactionTypeBaseline records an imported starting balance
	TransactionTypeBaseline TransactionType = "BASELINE"
	// TransactionTypeBuy adds shares and cost basis to a holding
	TransactionTypeBuy TransactionType = "BUY"
	// TransactionTypeSell removes shares and proportional cost basis
	TransactionTypeSell TransactionType = "SELL"
	// TransactionTypeDividend is recorded in the ledger only
	TransactionTypeDividend TransactionType = "DIVIDEND"
	// TransactionTypeContribution is recorded in the ledger only
	TransactionTypeContribution TransactionType = "CONTRIBUTION"
)

// ParseTransactionType normalizes a user supplied type name
func ParseTransactionType(s string) TransactionType {
	return TransactionType(strings.ToUpper(strings.TrimSpace(s)))
}

// RequiresInstrument reports whether postings of this type need a symbol, shares and price
func (t TransactionType) RequiresInstrument() bool {
	return t != TransactionTypeBaseline
}

// Account is a brokerage or retirement account owned by a user
type Account struct {
	CreatedAt   time.Time `json:"createdAt"`
	AccountType string    `json:"accountType"`
	Nickname    string    `json:"nickname"`
	Currency    Currency  `json:"currency"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
}

// Holding is a position in one account.
// A holding with no (or zero) shares but a positive cost basis is baseline-like:
// its current value is known only as the amount that was imported.
type Holding struct {
	UpdatedAt       time.Time `json:"updatedAt"`
	Symbol          *string   `json:"symbol"`
	TotalShares     *float64  `json:"totalShares"`
	PricePaid       *float64  `json:"pricePaid"`
	AvgCostPerShare *float64  `json:"avgCostPerShare"`
	Notes           *string   `json:"notes"`
	AccountType     string    `json:"accountType"`
	AccountLabel    string    `json:"accountLabel"`
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	AccountID       int64     `json:"accountId"`
	TotalCostBasis  float64   `json:"totalCostBasis"`
	IsBaseline      bool      `json:"isBaseline"`
}

// SymbolOrEmpty returns the trimmed symbol, or "" when the holding has none
func (h Holding) SymbolOrEmpty() string {
	if h.Symbol == nil {
		return ""
	}
	return strings.TrimSpace(*h.Symbol)
}

// Shares returns the share count, treating nil as zero
func (h Holding) Shares() float64 {
	if h.TotalShares == nil {
		return 0
	}
	return *h.TotalShares
}

// Transaction is one row of the account ledger
type Transaction struct {
	CreatedAt       time.Time       `json:"createdAt"`
	Symbol          *string         `json:"symbol"`
	Shares          *float64        `json:"shares"`
	Price           *float64        `json:"price"`
	Notes           *string         `json:"notes"`
	UUID            string          `json:"uuid"`
	TransactionType TransactionType `json:"transactionType"`
	TransactionDate string          `json:"transactionDate"` // YYYY-MM-DD
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	AccountID       int64           `json:"accountId"`
	Fees            float64         `json:"fees"`
}

// ContributionSchedule is a recurring deposit plan for an account
type ContributionSchedule struct {
	CreatedAt    time.Time  `json:"createdAt"`
	NextDue      *time.Time `json:"nextDue,omitempty"`
	Frequency    string     `json:"frequency"`
	AccountType  string     `json:"accountType"`
	AccountLabel string     `json:"accountLabel"`
	ScheduleID   int64      `json:"scheduleId"`
	UserID       int64      `json:"userId"`
	AccountID    int64      `json:"accountId"`
	Amount       float64    `json:"amount"`
}

// PriceQuote is a live quote. Quotes are never persisted.
type PriceQuote struct {
	Symbol string  `json:"symbol"`
	AsOf   string  `json:"asOf"` // YYYY-MM-DD, empty when the source gave no timestamp
	Price  float64 `json:"price"`
	Stale  bool    `json:"stale"`
}
