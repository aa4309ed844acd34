package holdings

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"

	"github.com/vmi/dashboard/internal/domain"
)

const (
	placeholder    = "—"
	unknownSymbol  = "UNKNOWN"
	unknownAccount = "Unknown Account"
	detailsMessage = "This holding is missing details regarding this investment. Please add its details so we can show accurate gains."
)

// Card is the render-ready description of one holding
type Card struct {
	Notes          *string      `json:"notes,omitempty"`
	Symbol         string       `json:"symbol"`
	AccountLabel   string       `json:"accountLabel"`
	Headline       string       `json:"headline"`
	Shares         string       `json:"shares"`
	CostBasis      string       `json:"costBasis"`
	CurrentPrice   string       `json:"currentPrice"`
	GainLoss       string       `json:"gainLoss"`
	GainLossPct    string       `json:"gainLossPct,omitempty"`
	DetailsMessage string       `json:"detailsMessage,omitempty"`
	DisplayClass   DisplayClass `json:"displayClass"`
	HoldingID      int64        `json:"holdingId"`
	NeedsDetails   bool         `json:"needsDetails"`
}

// TotalsCard is the render-ready portfolio balance
type TotalsCard struct {
	Title        string       `json:"title"`
	Headline     string       `json:"headline"`
	Change       string       `json:"change,omitempty"`
	Meta         string       `json:"meta"`
	DisplayClass DisplayClass `json:"displayClass"`
}

// BuildCard describes the card for h given its evaluation
func BuildCard(h domain.Holding, e Evaluation) Card {
	c := Card{
		HoldingID:    h.ID,
		Symbol:       h.SymbolOrEmpty(),
		AccountLabel: accountLabel(h),
		Headline:     placeholder,
		Shares:       placeholder,
		CostBasis:    placeholder,
		CurrentPrice: placeholder,
		GainLoss:     placeholder,
		DisplayClass: e.DisplayClass,
		NeedsDetails: e.NeedsDetails,
	}
	if c.Symbol == "" {
		c.Symbol = unknownSymbol
	}
	if e.NeedsDetails {
		c.DetailsMessage = detailsMessage
	}
	if h.Notes != nil && strings.TrimSpace(*h.Notes) != "" {
		notes := *h.Notes
		c.Notes = &notes
	}

	if e.CurrentValue != nil {
		c.Headline = formatMoney(*e.CurrentValue)
	}
	if e.EffectiveShares > 0 {
		c.Shares = formatShares(e.EffectiveShares)
	}
	if !e.IsBaselineLike && !e.IsUnknown && !e.IsPriceImputed {
		c.CostBasis = formatMoney(e.CostBasis)
	}
	if e.Price != nil {
		c.CurrentPrice = formatMoney(*e.Price)
	}
	if e.HasTrustworthyGainData {
		c.GainLoss = formatSignedMoney(*e.Gain)
		if e.GainPct != nil {
			c.GainLossPct = fmt.Sprintf("%.1f%%", *e.GainPct)
		}
	}
	return c
}

// BuildTotalsCard describes the portfolio balance card
func BuildTotalsCard(t Totals) TotalsCard {
	c := TotalsCard{
		Title:        "Total Balance Across All Accounts",
		Headline:     formatMoney(t.TotalValue),
		DisplayClass: t.DisplayClass,
	}
	if t.TotalGain != 0 {
		sign := ""
		if t.TotalGainPct > 0 {
			sign = "+"
		}
		c.Change = fmt.Sprintf("%s (%s%.2f%%)", formatSignedMoney(t.TotalGain), sign, t.TotalGainPct)
	}

	noun := "holdings"
	if t.HoldingsCount == 1 {
		noun = "holding"
	}
	c.Meta = fmt.Sprintf("%d %s • Total Cost Basis: %s", t.HoldingsCount, noun, formatMoney(t.TotalCostBasis))
	return c
}

func accountLabel(h domain.Holding) string {
	if s := strings.TrimSpace(h.AccountLabel); s != "" {
		return s
	}
	if s := strings.TrimSpace(h.AccountType); s != "" {
		return s
	}
	return unknownAccount
}

// formatMoney renders USD with cents, e.g. $1,234.50
func formatMoney(v float64) string {
	return money.NewFromFloat(v, money.USD).Display()
}

// formatSignedMoney renders +$1.00, -$1.00 and $0.00
func formatSignedMoney(v float64) string {
	abs := formatMoney(math.Abs(v))
	switch {
	case v > 0 && abs != "$0.00":
		return "+" + abs
	case v < 0 && abs != "$0.00":
		return "-" + abs
	default:
		return abs
	}
}

// formatShares shows up to four decimals without trailing zeros
func formatShares(v float64) string {
	return humanize.CommafWithDigits(v, 4)
}
