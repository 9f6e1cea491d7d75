package screener

import (
	"testing"

	"imbalance-screener/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seriesFromValues builds a series where each candle's close*volume equals the
// given traded value (volume fixed at 1).
func seriesFromValues(values ...float64) models.MCandleSeries {
	series := make(models.MCandleSeries, 0, len(values))
	for i, v := range values {
		series = append(series, models.MCandle{
			Timestamp: int64(i * 60),
			Open:      v,
			High:      v,
			Low:       v,
			Close:     v,
			Volume:    1,
		})
	}
	return series
}

// -----------------------------------------------------------------------------

func TestEvaluate_InsufficientCandles(t *testing.T) {
	tests := []struct {
		name   string
		series models.MCandleSeries
	}{
		{"empty series", nil},
		{"one candle", seriesFromValues(100)},
		{"five candles", seriesFromValues(100, 100, 100, 100, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Evaluate("RELIANCE", tt.series, 10))
		})
	}
}

// -----------------------------------------------------------------------------

func TestEvaluate_ZeroAverageDoesNotPanic(t *testing.T) {
	// All prior candles have zero traded value; must skip, not divide.
	series := seriesFromValues(0, 0, 0, 0, 0, 1200)
	assert.Nil(t, Evaluate("TCS", series, 10))
}

// -----------------------------------------------------------------------------

func TestEvaluate_TieDoesNotTrigger(t *testing.T) {
	// avg of first 5 = 100, last = exactly 10 * 100
	series := seriesFromValues(100, 100, 100, 100, 100, 1000)
	assert.Nil(t, Evaluate("INFY", series, 10))
}

// -----------------------------------------------------------------------------

func TestEvaluate_ImbalanceDetected(t *testing.T) {
	// avg of first 5 = 100, last = 1200 > 10 * 100
	series := seriesFromValues(100, 100, 100, 100, 100, 1200)

	result := Evaluate("RELIANCE", series, 10)
	require.NotNil(t, result)

	assert.Equal(t, "RELIANCE", result.Symbol)
	// 1200 / 1e7 rounded to 2 decimals
	assert.InDelta(t, 0.00, result.LastValueCr, 1e-9)
	assert.InDelta(t, 0.00, result.AvgValueCr, 1e-9)
	assert.Equal(t, 1200.0, result.Close)
	// closes go 100 -> 1200: (1200-100)/100*100 = 1100%
	assert.InDelta(t, 1100.0, result.PctMove, 1e-9)
	assert.Equal(t, 6, result.Candles)
}

// -----------------------------------------------------------------------------

func TestEvaluate_CroreScalingAndRounding(t *testing.T) {
	// Traded values large enough that crore scaling is visible.
	// First 5 candles: value 2.5e7 each (avg 2.5e7 -> 2.50 Cr).
	// Last candle: 11x avg = 2.75e8 -> 27.50 Cr, multiplier 10 triggers.
	series := models.MCandleSeries{
		{Timestamp: 0, Close: 250, Volume: 100000},
		{Timestamp: 60, Close: 250, Volume: 100000},
		{Timestamp: 120, Close: 250, Volume: 100000},
		{Timestamp: 180, Close: 250, Volume: 100000},
		{Timestamp: 240, Close: 250, Volume: 100000},
		{Timestamp: 300, Close: 275, Volume: 1000000},
	}

	result := Evaluate("HDFCBANK", series, 10)
	require.NotNil(t, result)

	assert.InDelta(t, 27.50, result.LastValueCr, 1e-9)
	assert.InDelta(t, 2.50, result.AvgValueCr, 1e-9)
	assert.Equal(t, 275.0, result.Close)
	// (275-250)/250*100 = 10.00
	assert.InDelta(t, 10.00, result.PctMove, 1e-9)
}

// -----------------------------------------------------------------------------

func TestEvaluate_ZeroPriorClose(t *testing.T) {
	// close[n-2] == 0: the match is reported with a zero percent move
	// instead of dividing by zero.
	series := models.MCandleSeries{
		{Timestamp: 0, Close: 100, Volume: 1},
		{Timestamp: 60, Close: 100, Volume: 1},
		{Timestamp: 120, Close: 100, Volume: 1},
		{Timestamp: 180, Close: 100, Volume: 1},
		{Timestamp: 240, Close: 0, Volume: 1},
		{Timestamp: 300, Close: 1200, Volume: 1},
	}

	result := Evaluate("ZEROCASE", series, 10)
	require.NotNil(t, result)
	assert.Equal(t, 0.0, result.PctMove)
}

// -----------------------------------------------------------------------------

func TestSortResults_DescendingByLastValue(t *testing.T) {
	results := []models.MImbalanceResult{
		{Symbol: "A", LastValueCr: 1.5},
		{Symbol: "B", LastValueCr: 9.75},
		{Symbol: "C", LastValueCr: 0.25},
		{Symbol: "D", LastValueCr: 4.0},
	}

	SortResults(results)

	order := make([]string, 0, len(results))
	for _, r := range results {
		order = append(order, r.Symbol)
	}
	assert.Equal(t, []string{"B", "D", "A", "C"}, order)
}

// -----------------------------------------------------------------------------

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -2.5, Round2(-2.501))
	assert.Equal(t, 0.0, Round2(0.0001))
}
