package domain

import "context"

// QuoteProvider fetches live quotes from a market data vendor
type QuoteProvider interface {
	// Quote returns the latest quote for one symbol
	Quote(ctx context.Context, symbol string) (PriceQuote, error)
}
