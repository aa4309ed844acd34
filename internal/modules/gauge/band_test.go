package gauge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vixBands = []Band{
	{Min: 10, Max: 22, AngleFrom: -90, AngleTo: -30},
	{Min: 22, Max: 28, AngleFrom: -30, AngleTo: 30},
	{Min: 28, Max: 40, AngleFrom: 30, AngleTo: 90},
}

func TestAngleFor_VIX(t *testing.T) {
	testCases := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"shared boundary uses first band", 22, -30},
		{"lower bound", 10, -90},
		{"upper bound", 40, 90},
		{"below range clamps", 3, -90},
		{"above range clamps", 80, 90},
		{"midpoint of first band", 16, -60},
		{"midpoint of caution band", 25, 0},
		{"inside risk band", 34, 60},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, AngleFor(tc.value, vixBands, 0), 1e-9)
		})
	}
}

func TestAngleFor_SingleBand(t *testing.T) {
	band := []Band{{Min: 20, Max: 30, AngleFrom: -30, AngleTo: 30}}

	assert.InDelta(t, 0, AngleFor(25, band, 99), 1e-9)
	assert.InDelta(t, -30, AngleFor(20-1e-6, band, 99), 1e-9)
	assert.InDelta(t, 30, AngleFor(30+1e-6, band, 99), 1e-9)
	assert.InDelta(t, -15, AngleFor(22.5, band, 99), 1e-9)
}

func TestAngleFor_MidpointIsAverageOfAngles(t *testing.T) {
	for _, b := range vixBands {
		mid := (b.Min + b.Max) / 2
		assert.InDelta(t, (b.AngleFrom+b.AngleTo)/2, AngleFor(mid, vixBands, 0), 1e-9)
	}
}

func TestAngleFor_MonotonicAcrossContiguousBands(t *testing.T) {
	prev := AngleFor(10, vixBands, 0)
	for v := 10.0; v <= 40; v += 0.25 {
		a := AngleFor(v, vixBands, 0)
		assert.GreaterOrEqual(t, a, prev-1e-9, "value %v", v)
		prev = a
	}
}

func TestAngleFor_InvertedOrientation(t *testing.T) {
	breadth := []Band{
		{Min: 0, Max: 0.27, AngleFrom: 30, AngleTo: 90},
		{Min: 0.27, Max: 0.30, AngleFrom: -30, AngleTo: 30},
		{Min: 0.30, Max: 0.40, AngleFrom: -90, AngleTo: -30},
	}

	assert.Equal(t, 30.0, AngleFor(0, breadth, 0))
	assert.Equal(t, -30.0, AngleFor(0.40, breadth, 0))
	assert.InDelta(t, 0.0, AngleFor(0.285, breadth, 0), 1e-9)
}

func TestAngleFor_DegenerateBand(t *testing.T) {
	bands := []Band{
		{Min: 0, Max: 10, AngleFrom: -90, AngleTo: 0},
		{Min: 10, Max: 10, AngleFrom: 15, AngleTo: 45},
		{Min: 10, Max: 20, AngleFrom: 0, AngleTo: 90},
	}

	// 10 matches the first band before the zero-width one
	assert.Equal(t, 0.0, AngleFor(10, bands, 7))

	single := []Band{{Min: 5, Max: 5, AngleFrom: 12, AngleTo: 80}}
	assert.Equal(t, 12.0, AngleFor(5, single, 0))
}

func TestAngleFor_GapReturnsPrevious(t *testing.T) {
	bands := []Band{
		{Min: 0, Max: 10, AngleFrom: -90, AngleTo: 0},
		{Min: 20, Max: 30, AngleFrom: 0, AngleTo: 90},
	}

	assert.Equal(t, 42.0, AngleFor(15, bands, 42))
}

func TestAngleFor_EmptyOrNaN(t *testing.T) {
	assert.Equal(t, 5.0, AngleFor(12, nil, 5))
	assert.Equal(t, 5.0, AngleFor(math.NaN(), vixBands, 5))
}

func TestAngleFor_AlwaysWithinConfiguredAngles(t *testing.T) {
	for v := -100.0; v <= 100; v += 0.5 {
		a := AngleFor(v, vixBands, 0)
		assert.GreaterOrEqual(t, a, -90.0)
		assert.LessOrEqual(t, a, 90.0)
	}
}

func TestZone(t *testing.T) {
	assert.Equal(t, 0, Zone(5, vixBands))
	assert.Equal(t, 0, Zone(22, vixBands))
	assert.Equal(t, 1, Zone(25, vixBands))
	assert.Equal(t, 2, Zone(28.5, vixBands))
	assert.Equal(t, 2, Zone(99, vixBands))
	assert.Equal(t, -1, Zone(1, nil))

	gap := []Band{{Min: 0, Max: 1}, {Min: 2, Max: 3}}
	assert.Equal(t, -1, Zone(1.5, gap))
}

func TestValidateBands(t *testing.T) {
	require.NoError(t, ValidateBands(vixBands))

	testCases := []struct {
		name  string
		bands []Band
	}{
		{"empty", nil},
		{"inverted", []Band{{Min: 10, Max: 5}}},
		{"unsorted", []Band{{Min: 10, Max: 20}, {Min: 0, Max: 5}}},
		{"overlap", []Band{{Min: 0, Max: 10}, {Min: 5, Max: 20}}},
		{"non-finite", []Band{{Min: 0, Max: math.Inf(1)}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidateBands(tc.bands))
		})
	}
}
