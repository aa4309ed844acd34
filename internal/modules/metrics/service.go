// Package metrics computes the market health readings behind the gauge board.
package metrics

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
	"github.com/vmi/dashboard/internal/modules/gauge"
	"github.com/vmi/dashboard/internal/modules/settings"
)

// Accepted range for the hand-entered Shiller CAPE ratio
const (
	MinShillerCAPE = 5.0
	MaxShillerCAPE = 50.0
)

// ShillerKey is the catalog key of the manually entered metric
const ShillerKey = "shiller"

// source is a fetched metric: the symbol's price, divided by divisor's when set
type source struct {
	key     string
	symbol  string
	divisor string
}

var sources = []source{
	{key: "breadth", symbol: "RSP", divisor: "SPY"},
	{key: "spreads", symbol: "HYG", divisor: "IEF"},
	{key: "yield", symbol: "TLT", divisor: "SGOV"},
	{key: "vix", symbol: "VIX.INDX"},
}

// PriceLookup resolves live quotes for a batch of symbols
type PriceLookup interface {
	Lookup(ctx context.Context, symbols []string) (map[string]domain.PriceQuote, map[string]string)
}

// SettingsStore persists the manual CAPE value
type SettingsStore interface {
	Get(ctx context.Context, key string) (*string, error)
	Set(ctx context.Context, key, value string) error
	GetFloat(ctx context.Context, key string, defaultValue float64) (float64, bool, error)
	SetFloat(ctx context.Context, key string, value float64) error
}

// Reading is one metric value and the date of the quote it came from
type Reading struct {
	Value float64 `json:"value"`
	AsOf  string  `json:"asOf"`
}

// Snapshot is every metric reading plus the tiles built from them
type Snapshot struct {
	Metrics  map[string]Reading `json:"metrics"`
	Errors   map[string]string  `json:"errors,omitempty"`
	Tiles    []gauge.Tile       `json:"tiles"`
	Complete bool               `json:"complete"`
}

// Service builds metric snapshots
type Service struct {
	prices   PriceLookup
	settings SettingsStore
	catalog  *gauge.Catalog
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a new metrics service
func NewService(prices PriceLookup, store SettingsStore, catalog *gauge.Catalog, log zerolog.Logger) *Service {
	return &Service{
		prices:   prices,
		settings: store,
		catalog:  catalog,
		log:      log.With().Str("service", "metrics").Logger(),
		now:      time.Now,
	}
}

// Catalog returns the gauge configuration in display order
func (s *Service) Catalog() []gauge.MetricConfig {
	return s.catalog.Metrics()
}

// Snapshot fetches every quote the metrics need in one fan-out and derives
// the readings. A metric whose inputs are missing is left out and marks the
// snapshot incomplete.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	symbols := make([]string, 0, len(sources)*2)
	for _, src := range sources {
		symbols = append(symbols, src.symbol)
		if src.divisor != "" {
			symbols = append(symbols, src.divisor)
		}
	}

	quotes, errs := s.prices.Lookup(ctx, symbols)
	snap := &Snapshot{
		Metrics:  make(map[string]Reading, len(sources)+1),
		Errors:   errs,
		Complete: true,
	}

	for _, src := range sources {
		reading, ok := derive(src, quotes)
		if !ok {
			snap.Complete = false
			s.log.Debug().Str("metric", src.key).Msg("Metric inputs unavailable")
			continue
		}
		snap.Metrics[src.key] = reading
	}

	shiller, err := s.Shiller(ctx)
	if err != nil {
		return nil, err
	}
	if shiller != nil {
		snap.Metrics[ShillerKey] = *shiller
	}

	for _, cfg := range s.catalog.Metrics() {
		var (
			value *float64
			asOf  string
		)
		if r, ok := snap.Metrics[cfg.Key]; ok {
			v := r.Value
			value = &v
			asOf = r.AsOf
		}
		snap.Tiles = append(snap.Tiles, gauge.BuildTile(cfg, value, asOf))
	}
	return snap, nil
}

func derive(src source, quotes map[string]domain.PriceQuote) (Reading, bool) {
	q, ok := quotes[src.symbol]
	if !ok {
		return Reading{}, false
	}
	if src.divisor == "" {
		return Reading{Value: q.Price, AsOf: q.AsOf}, true
	}

	d, ok := quotes[src.divisor]
	if !ok || d.Price == 0 {
		return Reading{}, false
	}
	value := q.Price / d.Price
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Reading{}, false
	}
	return Reading{Value: value, AsOf: q.AsOf}, true
}

// Shiller returns the stored CAPE reading, or nil when none was entered
func (s *Service) Shiller(ctx context.Context) (*Reading, error) {
	value, found, err := s.settings.GetFloat(ctx, settings.KeyShillerCAPE, 0)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	reading := &Reading{Value: value}
	if asOf, err := s.settings.Get(ctx, settings.KeyShillerCAPEAsOf); err == nil && asOf != nil {
		reading.AsOf = *asOf
	}
	return reading, nil
}

// SetShiller validates and stores a hand-entered CAPE value dated today
func (s *Service) SetShiller(ctx context.Context, value float64) (*Reading, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < MinShillerCAPE || value > MaxShillerCAPE {
		return nil, domain.NewValidationError("value", "Shiller CAPE must be between 5 and 50")
	}

	asOf := s.now().Format("2006-01-02")
	if err := s.settings.SetFloat(ctx, settings.KeyShillerCAPE, value); err != nil {
		return nil, err
	}
	if err := s.settings.Set(ctx, settings.KeyShillerCAPEAsOf, asOf); err != nil {
		return nil, err
	}

	s.log.Info().Float64("value", value).Msg("Shiller CAPE updated")
	return &Reading{Value: value, AsOf: asOf}, nil
}
