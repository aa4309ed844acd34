// Package baseline onboards an account from a single value snapshot.
//
// A user who does not know their purchase history enters what the account is
// worth today. Derive turns that snapshot (plus an optional share count or a
// live price for the ticker) into the share count and average cost stored on
// the baseline holding.
package baseline

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vmi/dashboard/internal/domain"
)

// Share counts imputed from a live price are rounded to this many places
const shareDecimals = 6

// ContributionInput is an optional recurring deposit plan captured during onboarding
type ContributionInput struct {
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
}

// Input is the onboarding payload
type Input struct {
	KnownShares  *float64           `json:"shares"`
	LivePrice    *float64           `json:"livePrice,omitempty"`
	Contribution *ContributionInput `json:"contribution,omitempty"`
	AccountType  string             `json:"accountType"`
	AccountLabel string             `json:"accountLabel"`
	TickerSymbol string             `json:"ticker"`
	Notes        string             `json:"notes"`
	AccountValue float64            `json:"accountValue"`
}

// Ticker returns the normalized ticker, or "" when none was given
func (in Input) Ticker() string {
	return strings.ToUpper(strings.TrimSpace(in.TickerSymbol))
}

// Derivation is the share count and average cost derived from a snapshot
type Derivation struct {
	TotalShares     *float64 `json:"totalShares"`
	AvgCostPerShare *float64 `json:"avgCostPerShare"`
	// PricePaidUsedAsProxy marks today's price standing in for an unknown
	// purchase price; gains for such a holding are not meaningful.
	PricePaidUsedAsProxy bool `json:"pricePaidUsedAsProxy"`
}

// Validate checks the numeric inputs Derive depends on
func (in Input) Validate() error {
	if !isFinite(in.AccountValue) || in.AccountValue <= 0 {
		return domain.NewValidationError("accountValue", "must be a positive number")
	}
	if in.KnownShares != nil && (!isFinite(*in.KnownShares) || *in.KnownShares <= 0) {
		return domain.NewValidationError("shares", "must be a positive number when provided")
	}
	if in.LivePrice != nil && !isFinite(*in.LivePrice) {
		return domain.NewValidationError("livePrice", "must be a number")
	}
	return nil
}

// Derive computes the holding's shares and average cost:
//   - a known share count wins: avg = value / shares
//   - otherwise a ticker with a positive live price imputes shares = value / price
//     (6 dp), avg = price, and flags the price as a proxy
//   - otherwise both stay unknown and the holding is value-only
func Derive(in Input) (Derivation, error) {
	if err := in.Validate(); err != nil {
		return Derivation{}, err
	}

	if in.KnownShares != nil {
		shares := *in.KnownShares
		avg := in.AccountValue / shares
		return Derivation{TotalShares: &shares, AvgCostPerShare: &avg}, nil
	}

	if in.Ticker() != "" && in.LivePrice != nil && *in.LivePrice > 0 {
		price := *in.LivePrice
		shares, _ := decimal.NewFromFloat(in.AccountValue).
			Div(decimal.NewFromFloat(price)).
			Round(shareDecimals).
			Float64()
		return Derivation{TotalShares: &shares, AvgCostPerShare: &price, PricePaidUsedAsProxy: true}, nil
	}

	return Derivation{}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
