package models

// MCandle represents a single 1-minute OHLCV bar.
type MCandle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// TradedValue is close price times volume, a proxy for money turnover
// during the bar.
func (c MCandle) TradedValue() float64 {
	return c.Close * c.Volume
}

// MCandleSeries is a chronologically ordered candle sequence for one symbol.
// A series shorter than MinCandlesForEvaluation carries too little history
// for the imbalance check.
type MCandleSeries []MCandle

// MinCandlesForEvaluation is the smallest series length the evaluator accepts.
const MinCandlesForEvaluation = 6
