package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmi/dashboard/internal/modules/gauge"
	"github.com/vmi/dashboard/internal/modules/holdings"
)

func TestSummaryMarkdown(t *testing.T) {
	s := &holdings.Summary{
		Cards: []holdings.Card{
			{Symbol: "VTI", AccountLabel: "Brokerage", Shares: "10", Headline: "$2,500.00", GainLoss: "+$500.00"},
		},
		PriceErrors: map[string]string{"ZZZ": "HTTP 404 for ZZZ.US", "AAA": "no price in response"},
		TotalsCard: holdings.TotalsCard{
			Title:    "Total Balance Across All Accounts",
			Headline: "$2,500.00",
			Change:   "+$500.00 (+25.00%)",
			Meta:     "1 holding • Total Cost Basis: $2,000.00",
		},
	}

	md := summaryMarkdown(s)
	assert.Contains(t, md, "# Total Balance Across All Accounts")
	assert.Contains(t, md, "**$2,500.00** +$500.00 (+25.00%)")
	assert.Contains(t, md, "| VTI | Brokerage | 10 | $2,500.00 | +$500.00 |")
	assert.Less(t, strings.Index(md, "- AAA"), strings.Index(md, "- ZZZ"))
}

func TestSummaryMarkdown_Empty(t *testing.T) {
	md := summaryMarkdown(&holdings.Summary{TotalsCard: holdings.BuildTotalsCard(holdings.Totals{})})
	assert.Contains(t, md, "_No holdings yet._")
	assert.NotContains(t, md, "| Symbol |")
}

func TestDescribeTile(t *testing.T) {
	catalog, err := gauge.DefaultCatalog()
	assert.NoError(t, err)
	cfg, ok := catalog.Lookup("vix")
	assert.True(t, ok)

	v := 25.0
	line := describeTile(gauge.BuildTile(cfg, &v, ""))
	assert.Contains(t, line, "VIX: 25.0")
	assert.Contains(t, line, "zone caution")

	v = 80
	assert.Contains(t, describeTile(gauge.BuildTile(cfg, &v, "")), "zone risk")
}
