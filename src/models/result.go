package models

import "time"

// MImbalanceResult is emitted when the latest candle's traded value exceeds
// the configured multiple of the historical average. Values are expressed in
// crore (1e7) units, rounded to 2 decimals for display.
type MImbalanceResult struct {
	Symbol      string    `json:"symbol"`
	LastValueCr float64   `json:"last_value_cr"`
	AvgValueCr  float64   `json:"avg_value_cr"`
	Close       float64   `json:"close"`
	PctMove     float64   `json:"pct_move"`
	Candles     int       `json:"candles"`
	DetectedAt  time.Time `json:"detected_at"`
}
