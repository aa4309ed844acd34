// Package prices fans quote requests out to the market data provider.
package prices

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
)

// Service resolves live quotes for batches of symbols
type Service struct {
	provider domain.QuoteProvider
	log      zerolog.Logger
}

// NewService creates a new price service
func NewService(provider domain.QuoteProvider, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log.With().Str("service", "prices").Logger(),
	}
}

// ParseTickers splits a comma separated ticker list, uppercasing and dropping blanks
func ParseTickers(param string) []string {
	parts := strings.Split(param, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Lookup fetches quotes for all symbols concurrently. A failed symbol is
// reported in the errors map and is absent from the quotes map.
func (s *Service) Lookup(ctx context.Context, symbols []string) (map[string]domain.PriceQuote, map[string]string) {
	quotes := make(map[string]domain.PriceQuote)
	errs := make(map[string]string)

	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym != "" {
			unique[sym] = struct{}{}
		}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for sym := range unique {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()

			q, err := s.provider.Quote(ctx, sym)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", sym).Msg("Quote fetch failed")
				errs[sym] = err.Error()
				return
			}
			quotes[sym] = q
		}(sym)
	}
	wg.Wait()

	return quotes, errs
}

// PriceOf returns a pointer to the quote price for symbol, or nil when unknown
func PriceOf(quotes map[string]domain.PriceQuote, symbol string) *float64 {
	q, ok := quotes[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil
	}
	p := q.Price
	return &p
}
