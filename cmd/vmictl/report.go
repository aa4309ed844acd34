package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vmi/dashboard/internal/modules/holdings"
)

// summaryMarkdown renders the holding cards and totals card as a markdown report
func summaryMarkdown(s *holdings.Summary) string {
	var b strings.Builder

	b.WriteString("# " + s.TotalsCard.Title + "\n\n")
	b.WriteString("**" + s.TotalsCard.Headline + "**")
	if s.TotalsCard.Change != "" {
		b.WriteString(" " + s.TotalsCard.Change)
	}
	b.WriteString("\n\n")
	b.WriteString(s.TotalsCard.Meta + "\n\n")

	if len(s.Cards) == 0 {
		b.WriteString("_No holdings yet._\n")
		return b.String()
	}

	b.WriteString("| Symbol | Account | Shares | Value | Gain |\n")
	b.WriteString("|---|---|---:|---:|---:|\n")
	for _, c := range s.Cards {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", c.Symbol, c.AccountLabel, c.Shares, c.Headline, c.GainLoss)
	}

	if len(s.PriceErrors) > 0 {
		syms := make([]string, 0, len(s.PriceErrors))
		for sym := range s.PriceErrors {
			syms = append(syms, sym)
		}
		sort.Strings(syms)

		b.WriteString("\n## Quote errors\n\n")
		for _, sym := range syms {
			fmt.Fprintf(&b, "- %s: %s\n", sym, s.PriceErrors[sym])
		}
	}
	return b.String()
}
