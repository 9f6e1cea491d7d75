package screener

import (
	"math"
	"sort"
	"time"

	"imbalance-screener/src/models"
)

// -----------------------------------------------------------------------------

// CroreUnit is the display scale factor for traded values.
const CroreUnit = 1e7

// -----------------------------------------------------------------------------

// Evaluate decides whether the series exhibits a traded-value imbalance.
// Returns nil when the series is too short, the historical average is zero or
// undefined, or the last candle's traded value does not strictly exceed
// multiplier times that average.
func Evaluate(symbol string, series models.MCandleSeries, multiplier float64) *models.MImbalanceResult {
	n := len(series)
	if n < models.MinCandlesForEvaluation {
		return nil
	}

	sum := 0.0
	for _, c := range series[:n-1] {
		sum += c.TradedValue()
	}
	avg := sum / float64(n-1)
	if avg == 0 || math.IsNaN(avg) {
		return nil
	}

	last := series[n-1].TradedValue()
	if last <= multiplier*avg {
		return nil
	}

	// Percent move between the last two closes. A zero prior close would
	// divide by zero; the match is still reported with a zero move.
	lastClose := series[n-1].Close
	prevClose := series[n-2].Close
	pctMove := 0.0
	if prevClose != 0 {
		pctMove = (lastClose - prevClose) / prevClose * 100
	}

	return &models.MImbalanceResult{
		Symbol:      symbol,
		LastValueCr: Round2(last / CroreUnit),
		AvgValueCr:  Round2(avg / CroreUnit),
		Close:       lastClose,
		PctMove:     Round2(pctMove),
		Candles:     n,
		DetectedAt:  time.Now().UTC(),
	}
}

// -----------------------------------------------------------------------------

// SortResults orders results by last traded value, largest first.
func SortResults(results []models.MImbalanceResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].LastValueCr > results[j].LastValueCr
	})
}

// -----------------------------------------------------------------------------

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
