// Package eodhd provides a client for the EODHD real-time quote API.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
)

// DefaultBaseURL is the real-time endpoint; the symbol is appended as a path segment
const DefaultBaseURL = "https://eodhd.com/api/real-time"

// Price fields in order of preference
var pricePaths = []string{"$.close", "$.last_trade_price"}

// Client for eodhd.com real-time quotes
type Client struct {
	baseURL  string
	token    string
	client   *http.Client
	sessions *SessionCalendar
	now      func() time.Time
	log      zerolog.Logger
}

// NewClient creates a new EODHD client
func NewClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		client:   &http.Client{Timeout: timeout},
		sessions: NewSessionCalendar(),
		now:      time.Now,
		log:      log.With().Str("client", "eodhd").Logger(),
	}
}

// NormalizeSymbol uppercases a ticker and appends the .US exchange suffix when none is given
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || strings.Contains(s, ".") {
		return s
	}
	return s + ".US"
}

// Quote fetches the latest quote for symbol. The returned quote carries the
// symbol as requested (trimmed, uppercased), not the exchange-qualified form.
func (c *Client) Quote(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	requested := strings.ToUpper(strings.TrimSpace(symbol))
	if requested == "" {
		return domain.PriceQuote{}, domain.NewValidationError("symbol", "is required")
	}
	if c.token == "" {
		return domain.PriceQuote{}, fmt.Errorf("EODHD API token is not configured")
	}

	eodSymbol := NormalizeSymbol(requested)
	reqURL := fmt.Sprintf("%s/%s?api_token=%s&fmt=json",
		c.baseURL, url.PathEscape(eodSymbol), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("failed to build request for %s: %w", requested, err)
	}

	c.log.Debug().Str("symbol", eodSymbol).Msg("Fetching quote")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("request for %s failed: %w", requested, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.PriceQuote{}, fmt.Errorf("HTTP %d for %s", resp.StatusCode, requested)
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("failed to parse response for %s: %w", requested, err)
	}

	price, ok := extractPrice(payload)
	if !ok {
		return domain.PriceQuote{}, fmt.Errorf("no price in response for %s", requested)
	}

	quote := domain.PriceQuote{Symbol: requested, Price: price}
	if ts, ok := extractFloat(payload, "$.timestamp"); ok && ts > 0 {
		asOf := time.Unix(int64(ts), 0).UTC()
		quote.AsOf = asOf.Format("2006-01-02")
		quote.Stale = c.sessions.IsStale(eodSymbol, asOf, c.now())
	}

	c.log.Debug().
		Str("symbol", requested).
		Float64("price", quote.Price).
		Str("as_of", quote.AsOf).
		Msg("Fetched quote")

	return quote, nil
}

// extractPrice returns the first usable price field
func extractPrice(payload interface{}) (float64, bool) {
	for _, path := range pricePaths {
		if v, ok := extractFloat(payload, path); ok {
			return v, true
		}
	}
	return 0, false
}

// extractFloat reads a numeric field. EODHD reports missing values as "NA".
func extractFloat(payload interface{}, path string) (float64, bool) {
	jval, err := jsonpath.Get(path, payload)
	if err != nil || jval == nil {
		return 0, false
	}
	if jlist, ok := jval.([]interface{}); ok {
		if len(jlist) == 0 {
			return 0, false
		}
		jval = jlist[0]
	}

	switch v := jval.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
