package models

// -----------------------------------------------------------------------------
// Scan Snapshot (server state pushed to browsers)
// -----------------------------------------------------------------------------

type MScanSnapshot struct {
	Type            string             `json:"type"` // "INITIAL" or "UPDATE"
	Results         []MImbalanceResult `json:"results"`
	SymbolsScanned  int                `json:"symbols_scanned"`
	Matches         int                `json:"matches"`
	Notices         []string           `json:"notices"`
	Degraded        bool               `json:"degraded"`
	MarketClosed    bool               `json:"market_closed"`
	Timestamp       int64              `json:"timestamp"`
	ScanTimeSeconds float64            `json:"scan_time_seconds"`
}

// -----------------------------------------------------------------------------
// Runtime settings exchanged with the UI
// -----------------------------------------------------------------------------

type MScanSettings struct {
	Symbols                []string `json:"symbols"`
	Multiplier             float64  `json:"multiplier"`
	RefreshIntervalSeconds int      `json:"refresh_interval_seconds"`
}

// Multiplier bounds and refresh floor exposed to the UI widgets.
const (
	MultiplierMin      = 3.0
	MultiplierMax      = 30.0
	MultiplierDefault  = 10.0
	RefreshMinSeconds  = 15
	RefreshDefaultSecs = 60
)
