package holdings

import (
	"gonum.org/v1/gonum/floats"
)

// totals use a wider deadband than single holdings
const totalsDeadband = 0.01

// Totals is the portfolio-wide balance
type Totals struct {
	DisplayClass   DisplayClass `json:"displayClass"`
	TotalValue     float64      `json:"totalValue"`
	TotalCostBasis float64      `json:"totalCostBasis"`
	TotalGain      float64      `json:"totalGain"`
	TotalGainPct   float64      `json:"totalGainPct"`
	HoldingsCount  int          `json:"holdingsCount"`
}

// ComputeTotals sums value and cost basis across evaluations. A holding with
// no current value falls back to its cost basis, and a holding with neither
// is left out of the totals and the count.
func ComputeTotals(evals []Evaluation) Totals {
	values := make([]float64, 0, len(evals))
	costs := make([]float64, 0, len(evals))

	for _, e := range evals {
		value := 0.0
		switch {
		case e.CurrentValue != nil:
			value = *e.CurrentValue
		case e.CostBasis > 0:
			value = e.CostBasis
		}
		if value <= 0 && e.CostBasis <= 0 {
			continue
		}
		values = append(values, value)
		costs = append(costs, e.CostBasis)
	}

	t := Totals{
		TotalValue:     floats.Sum(values),
		TotalCostBasis: floats.Sum(costs),
		HoldingsCount:  len(values),
		DisplayClass:   ClassNeutral,
	}
	t.TotalGain = t.TotalValue - t.TotalCostBasis
	if t.TotalCostBasis > 0 {
		t.TotalGainPct = t.TotalGain / t.TotalCostBasis * 100
	}

	switch {
	case t.TotalGain > totalsDeadband:
		t.DisplayClass = ClassPositive
	case t.TotalGain < -totalsDeadband:
		t.DisplayClass = ClassNegative
	}
	return t
}
