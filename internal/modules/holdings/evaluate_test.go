package holdings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmi/dashboard/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func sym(s string) *string { return &s }

func TestEvaluate_PriceImputedSnapshot(t *testing.T) {
	h := domain.Holding{Symbol: sym("VTI"), TotalShares: ptr(0), TotalCostBasis: 5000}

	e := Evaluate(h, ptr(250))

	assert.True(t, e.IsPriceImputed)
	assert.False(t, e.IsBaselineLike)
	assert.Nil(t, e.Gain)
	assert.Nil(t, e.GainPct)
	require.NotNil(t, e.CurrentValue)
	assert.Equal(t, 5000.0, *e.CurrentValue)
	assert.Equal(t, 20.0, e.EffectiveShares)
	assert.Equal(t, ClassNeutral, e.DisplayClass)
	assert.False(t, e.NeedsDetails)
	assert.True(t, e.HasResolvedIdentity)
	assert.False(t, e.HasTrustworthyGainData)
}

func TestEvaluate_SnapshotWithoutPrice(t *testing.T) {
	h := domain.Holding{Symbol: sym("VTI"), TotalCostBasis: 5000}

	e := Evaluate(h, nil)

	assert.True(t, e.IsBaselineLike)
	assert.False(t, e.IsPriceImputed)
	assert.True(t, e.NeedsDetails)
	assert.False(t, e.HasResolvedIdentity)
	require.NotNil(t, e.CurrentValue)
	assert.Equal(t, 5000.0, *e.CurrentValue)
	assert.Equal(t, 0.0, e.EffectiveShares)
}

func TestEvaluate_NoiseSuppressedByPercent(t *testing.T) {
	h := domain.Holding{Symbol: sym("VTI"), TotalShares: ptr(100), TotalCostBasis: 10000}

	e := Evaluate(h, ptr(100.001))

	require.NotNil(t, e.CurrentValue)
	assert.InDelta(t, 10000.1, *e.CurrentValue, 1e-6)
	require.NotNil(t, e.Gain)
	require.NotNil(t, e.GainPct)
	assert.Equal(t, 0.0, *e.Gain)
	assert.Equal(t, 0.0, *e.GainPct)
	assert.Equal(t, ClassNeutral, e.DisplayClass)
	assert.True(t, e.HasTrustworthyGainData)
}

func TestEvaluate_NoiseSuppressedByCents(t *testing.T) {
	h := domain.Holding{Symbol: sym("X"), TotalShares: ptr(1), TotalCostBasis: 1}

	e := Evaluate(h, ptr(1.005))

	assert.Equal(t, 0.0, *e.Gain)
	assert.Equal(t, 0.0, *e.GainPct)
}

func TestEvaluate_NormalGainAndLoss(t *testing.T) {
	h := domain.Holding{Symbol: sym("VTI"), TotalShares: ptr(10), TotalCostBasis: 2000}

	up := Evaluate(h, ptr(250))
	assert.Equal(t, 2500.0, *up.CurrentValue)
	assert.Equal(t, 500.0, *up.Gain)
	assert.Equal(t, 25.0, *up.GainPct)
	assert.Equal(t, ClassPositive, up.DisplayClass)
	assert.False(t, up.NeedsDetails)

	down := Evaluate(h, ptr(150))
	assert.Equal(t, -500.0, *down.Gain)
	assert.Equal(t, ClassNegative, down.DisplayClass)
}

func TestEvaluate_ZeroCostBasisSnapsToNeutral(t *testing.T) {
	h := domain.Holding{Symbol: sym("GIFT"), TotalShares: ptr(2)}

	e := Evaluate(h, ptr(50))

	require.NotNil(t, e.CurrentValue)
	assert.Equal(t, 100.0, *e.CurrentValue)
	require.NotNil(t, e.Gain)
	assert.Equal(t, 0.0, *e.Gain)
	assert.Nil(t, e.GainPct)
	assert.Equal(t, ClassNeutral, e.DisplayClass)
}

func TestEvaluate_UnknownSymbolAlwaysNeedsDetails(t *testing.T) {
	testCases := []struct {
		name string
		h    domain.Holding
	}{
		{"snapshot", domain.Holding{TotalCostBasis: 1000}},
		{"shares", domain.Holding{TotalShares: ptr(5), TotalCostBasis: 1000}},
		{"blank symbol", domain.Holding{Symbol: sym("  "), TotalShares: ptr(5), TotalCostBasis: 1000}},
		{"empty", domain.Holding{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := Evaluate(tc.h, ptr(100))
			assert.True(t, e.IsUnknown)
			assert.True(t, e.NeedsDetails)
			assert.False(t, e.IsPriceImputed)
			assert.Nil(t, e.Price, "price is ignored without a symbol")
		})
	}
}

func TestEvaluate_SharesWithoutPrice(t *testing.T) {
	h := domain.Holding{Symbol: sym("VTI"), TotalShares: ptr(3), TotalCostBasis: 600}

	e := Evaluate(h, nil)

	assert.Nil(t, e.CurrentValue)
	assert.Nil(t, e.Gain)
	assert.False(t, e.NeedsDetails)
	assert.False(t, e.HasTrustworthyGainData)
	assert.Equal(t, ClassNeutral, e.DisplayClass)
}

func TestRuleNames_Order(t *testing.T) {
	assert.Equal(t, []string{
		"classify-baseline",
		"impute-from-price",
		"resolve-identity",
		"normal-gain",
		"suppress-noise",
		"classify-color",
		"flag-unknown",
	}, RuleNames())
}

func TestComputeTotals(t *testing.T) {
	evals := []Evaluation{
		Evaluate(domain.Holding{Symbol: sym("VTI"), TotalShares: ptr(10), TotalCostBasis: 2000}, ptr(250)),
		Evaluate(domain.Holding{Symbol: sym("BND"), TotalCostBasis: 500}, nil),
		{CurrentValue: ptr(0), CostBasis: 0},
		Evaluate(domain.Holding{}, nil),
	}

	totals := ComputeTotals(evals)

	assert.Equal(t, 2, totals.HoldingsCount)
	assert.Equal(t, 3000.0, totals.TotalValue)
	assert.Equal(t, 2500.0, totals.TotalCostBasis)
	assert.Equal(t, 500.0, totals.TotalGain)
	assert.Equal(t, 20.0, totals.TotalGainPct)
	assert.Equal(t, ClassPositive, totals.DisplayClass)
}

func TestComputeTotals_IncludesCostBasisWithZeroValue(t *testing.T) {
	totals := ComputeTotals([]Evaluation{{CurrentValue: ptr(0), CostBasis: 500}})

	assert.Equal(t, 1, totals.HoldingsCount)
	assert.Equal(t, 0.0, totals.TotalValue)
	assert.Equal(t, 500.0, totals.TotalCostBasis)
	assert.Equal(t, ClassNegative, totals.DisplayClass)
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.Equal(t, 0, totals.HoldingsCount)
	assert.Equal(t, 0.0, totals.TotalGainPct)
	assert.Equal(t, ClassNeutral, totals.DisplayClass)
}
