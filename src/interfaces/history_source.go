package interfaces

import "imbalance-screener/src/models"

// -----------------------------------------------------------------------------
// IHistorySource interface for fetching intraday candles from a broker API.
// -----------------------------------------------------------------------------

type IHistorySource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchCandles returns 1-minute candles for the symbol covering the last
	// `days` calendar days. An empty series (nil error) means the data was
	// unavailable; the scan continues with the next symbol.
	FetchCandles(symbol string, days int) (models.MCandleSeries, error)
}
