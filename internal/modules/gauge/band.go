// Package gauge maps metric readings onto the needle angle of a semicircular gauge.
//
// A metric's scale is described by an ordered list of bands. Each band maps a
// value range [Min, Max] linearly onto an angle range [AngleFrom, AngleTo]
// (degrees, -90 pointing left, +90 pointing right).
package gauge

import (
	"fmt"
	"math"
)

// Band maps the value range [Min, Max] onto [AngleFrom, AngleTo]
type Band struct {
	Zone      string  `yaml:"zone,omitempty" json:"zone,omitempty"`
	Min       float64 `yaml:"min" json:"min"`
	Max       float64 `yaml:"max" json:"max"`
	AngleFrom float64 `yaml:"angleFrom" json:"angleFrom"`
	AngleTo   float64 `yaml:"angleTo" json:"angleTo"`
}

// AngleFor returns the needle angle for value.
//
// Values at or below the first band's Min pin to its AngleFrom, values at or
// above the last band's Max pin to its AngleTo. Otherwise the first band
// containing the value (bounds inclusive) is interpolated linearly. When no
// band contains the value, previous is returned so the needle stays put.
func AngleFor(value float64, bands []Band, previous float64) float64 {
	if len(bands) == 0 || math.IsNaN(value) {
		return previous
	}

	first := bands[0]
	if value <= first.Min {
		return first.AngleFrom
	}
	last := bands[len(bands)-1]
	if value >= last.Max {
		return last.AngleTo
	}

	for _, b := range bands {
		if value < b.Min || value > b.Max {
			continue
		}
		span := b.Max - b.Min
		if span <= 0 {
			return b.AngleFrom
		}
		t := (value - b.Min) / span
		return b.AngleFrom + t*(b.AngleTo-b.AngleFrom)
	}

	return previous
}

// Zone returns the index of the band value falls in, applying the same
// clamping and first-match rule as AngleFor. Returns -1 when no band matches.
func Zone(value float64, bands []Band) int {
	if len(bands) == 0 || math.IsNaN(value) {
		return -1
	}
	if value <= bands[0].Min {
		return 0
	}
	if value >= bands[len(bands)-1].Max {
		return len(bands) - 1
	}
	for i, b := range bands {
		if value >= b.Min && value <= b.Max {
			return i
		}
	}
	return -1
}

// ValidateBands rejects band lists the interpolator would treat ambiguously:
// empty lists, non-finite bounds, inverted bands, bands out of Min order, and
// bands that overlap their predecessor. Touching bounds (Max == next Min) are allowed.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("at least one band is required")
	}

	for i, b := range bands {
		for _, v := range []float64{b.Min, b.Max, b.AngleFrom, b.AngleTo} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("band %d: non-finite bound", i)
			}
		}
		if b.Max < b.Min {
			return fmt.Errorf("band %d: max %.4g is below min %.4g", i, b.Max, b.Min)
		}
		if i == 0 {
			continue
		}
		prev := bands[i-1]
		if b.Min < prev.Min {
			return fmt.Errorf("band %d: not sorted by min", i)
		}
		if b.Min < prev.Max {
			return fmt.Errorf("band %d: overlaps band %d (%.4g < %.4g)", i, i-1, b.Min, prev.Max)
		}
	}

	return nil
}
