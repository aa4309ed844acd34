package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vmi/dashboard/internal/domain"
)

// MockQuoteProvider is an in-memory domain.QuoteProvider for tests.
// Unknown symbols fail the way the live client does for a missing price.
type MockQuoteProvider struct {
	mu     sync.RWMutex
	quotes map[string]domain.PriceQuote
	errs   map[string]error
	calls  map[string]int
}

// NewMockQuoteProvider creates an empty mock quote provider
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		quotes: make(map[string]domain.PriceQuote),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// WithPrice registers a fresh quote dated asOf for symbol
func (m *MockQuoteProvider) WithPrice(symbol string, price float64, asOf string) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	sym := strings.ToUpper(symbol)
	m.quotes[sym] = domain.PriceQuote{Symbol: sym, Price: price, AsOf: asOf}
	return m
}

// WithError makes every lookup of symbol fail with err
func (m *MockQuoteProvider) WithError(symbol string, err error) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[strings.ToUpper(symbol)] = err
	return m
}

// Quote implements domain.QuoteProvider
func (m *MockQuoteProvider) Quote(_ context.Context, symbol string) (domain.PriceQuote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[sym]++

	if err, ok := m.errs[sym]; ok {
		return domain.PriceQuote{}, err
	}
	q, ok := m.quotes[sym]
	if !ok {
		return domain.PriceQuote{}, fmt.Errorf("no price in response for %s", sym)
	}
	return q, nil
}

// Calls returns how many times symbol was quoted
func (m *MockQuoteProvider) Calls(symbol string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[strings.ToUpper(symbol)]
}
