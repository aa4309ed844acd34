// Package holdings values positions against live prices and decides how
// trustworthy each figure is.
package holdings

import (
	"math"

	"github.com/vmi/dashboard/internal/domain"
)

// DisplayClass is the colour bucket for a gain figure
type DisplayClass string

const (
	ClassPositive DisplayClass = "gain-positive"
	ClassNegative DisplayClass = "gain-negative"
	ClassNeutral  DisplayClass = "gain-neutral"
)

const (
	noiseGain     = 0.01  // |gain| below one cent is drift
	noiseGainPct  = 0.1   // |gainPct| below a tenth of a percent is drift
	colorDeadband = 0.005 // half a cent either side of zero stays neutral
)

// Evaluation is the valued view of one holding
type Evaluation struct {
	CurrentValue    *float64     `json:"currentValue"`
	Gain            *float64     `json:"gain"`
	GainPct         *float64     `json:"gainPct"`
	Price           *float64     `json:"currentPrice"`
	DisplayClass    DisplayClass `json:"displayClass"`
	EffectiveShares float64      `json:"effectiveShares"`
	CostBasis       float64      `json:"totalCostBasis"`
	HoldingID       int64        `json:"holdingId"`

	// IsBaselineLike: value-only snapshot still missing its details
	IsBaselineLike bool `json:"isBaselineLike"`
	// IsPriceImputed: snapshot whose shares were inferred from today's price
	IsPriceImputed bool `json:"isPriceImputed"`
	IsUnknown      bool `json:"isUnknown"`
	NeedsDetails   bool `json:"needsDetails"`

	// HasResolvedIdentity: we know what the holding is and how much of it there is
	HasResolvedIdentity bool `json:"hasResolvedIdentity"`
	// HasTrustworthyGainData: gain figures come from a real cost basis
	HasTrustworthyGainData bool `json:"hasTrustworthyGainData"`
}

type evalState struct {
	holding   domain.Holding
	price     *float64
	hasSymbol bool
	eval      Evaluation
}

type rule struct {
	name  string
	apply func(*evalState)
}

// Rules run in order; later rules read and may override earlier flags.
var rules = []rule{
	// A holding with value but no shares is a snapshot, not a position.
	{"classify-baseline", func(s *evalState) {
		s.eval.IsBaselineLike = s.eval.EffectiveShares <= 0 && s.eval.CostBasis > 0
	}},
	// The typed-in snapshot value is today's value. With a price we can
	// infer shares, but the purchase price stays unknown.
	{"impute-from-price", func(s *evalState) {
		if !s.eval.IsBaselineLike {
			return
		}
		if s.hasSymbol && s.price != nil {
			s.eval.EffectiveShares = s.eval.CostBasis / *s.price
		}
		v := s.eval.CostBasis
		s.eval.CurrentValue = &v
	}},
	// A snapshot we could price is identified well enough to drop the
	// "needs details" state, while its gains remain untrusted.
	{"resolve-identity", func(s *evalState) {
		s.eval.IsPriceImputed = s.eval.IsBaselineLike && s.hasSymbol && s.price != nil
		if s.eval.IsPriceImputed {
			s.eval.IsBaselineLike = false
		}
	}},
	{"normal-gain", func(s *evalState) {
		if s.eval.IsBaselineLike || s.eval.IsPriceImputed || s.price == nil || s.eval.EffectiveShares <= 0 {
			return
		}
		value := *s.price * s.eval.EffectiveShares
		gain := value - s.eval.CostBasis
		s.eval.CurrentValue = &value
		s.eval.Gain = &gain
		if s.eval.CostBasis > 0 {
			pct := gain / s.eval.CostBasis * 100
			s.eval.GainPct = &pct
		}
	}},
	// Sub-cent or sub-0.1% moves snap to exactly zero. Without a cost basis
	// there is no percentage, which counts as no move.
	{"suppress-noise", func(s *evalState) {
		if s.eval.Gain == nil {
			return
		}
		small := math.Abs(*s.eval.Gain) < noiseGain
		if s.eval.GainPct == nil || math.Abs(*s.eval.GainPct) < noiseGainPct {
			small = true
		}
		if !small {
			return
		}
		zeroGain, zeroPct := 0.0, 0.0
		s.eval.Gain = &zeroGain
		if s.eval.GainPct != nil {
			s.eval.GainPct = &zeroPct
		}
	}},
	{"classify-color", func(s *evalState) {
		s.eval.DisplayClass = ClassNeutral
		if s.eval.Gain == nil {
			return
		}
		switch {
		case *s.eval.Gain > colorDeadband:
			s.eval.DisplayClass = ClassPositive
		case *s.eval.Gain < -colorDeadband:
			s.eval.DisplayClass = ClassNegative
		}
	}},
	// Without a symbol nothing can be priced; such rows always need details.
	{"flag-unknown", func(s *evalState) {
		s.eval.IsUnknown = !s.hasSymbol
		s.eval.NeedsDetails = s.eval.IsUnknown || s.eval.IsBaselineLike
		s.eval.HasResolvedIdentity = !s.eval.NeedsDetails
		s.eval.HasTrustworthyGainData = s.eval.Gain != nil && !s.eval.IsBaselineLike && !s.eval.IsPriceImputed
	}},
}

// RuleNames lists the pipeline in execution order
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

// Evaluate values h at price (nil when no live price is known).
// A price for a holding without a symbol is ignored.
func Evaluate(h domain.Holding, price *float64) Evaluation {
	s := &evalState{
		holding:   h,
		hasSymbol: h.SymbolOrEmpty() != "",
	}
	if s.hasSymbol && price != nil && !math.IsNaN(*price) && !math.IsInf(*price, 0) {
		p := *price
		s.price = &p
	}

	s.eval = Evaluation{
		HoldingID:       h.ID,
		Price:           s.price,
		EffectiveShares: h.Shares(),
		CostBasis:       h.TotalCostBasis,
	}

	for _, r := range rules {
		r.apply(s)
	}
	return s.eval
}
