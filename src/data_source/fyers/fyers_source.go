package fyers

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"imbalance-screener/src/helpers"
	"imbalance-screener/src/interfaces"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"
)

// -----------------------------------------------------------------------------

const historyURL = "https://api-t1.fyers.in/data/history"

// -----------------------------------------------------------------------------

type HistorySource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Tokens  interfaces.ITokenProvider
	Logger  *logger.Logger

	// Overridable for tests
	BaseURL string
	Now     func() time.Time
}

// -----------------------------------------------------------------------------

func (s *HistorySource) Name() string {
	return "fyers-history"
}

// -----------------------------------------------------------------------------

func NewHistorySource(cfg *models.MConfig, netMgr interfaces.INetworkManager, tokens interfaces.ITokenProvider, log *logger.Logger) *HistorySource {
	return &HistorySource{
		Config:  cfg,
		Network: netMgr,
		Tokens:  tokens,
		Logger:  log,
		BaseURL: historyURL,
		Now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// historyResponse is the typed shape of the history endpoint payload. Candles
// arrive as rows of six numbers: time, open, high, low, close, volume.
type historyResponse struct {
	Status  string              `json:"s"`
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Candles [][]json.RawMessage `json:"candles"`
}

// -----------------------------------------------------------------------------

// FetchCandles returns 1-minute candles for the symbol over the last `days`
// calendar days. Unavailable data yields an empty series, never a pipeline
// error: in degraded mode no network call is made, and transport or parse
// failures are reported through the returned error so the caller can surface
// a notice and move on.
func (s *HistorySource) FetchCandles(symbol string, days int) (models.MCandleSeries, error) {
	if s.Tokens.Degraded() {
		return nil, nil
	}
	if days < 1 {
		days = 1
	}

	today := s.Now()
	params := map[string]string{
		"symbol":      QualifySymbol(symbol),
		"resolution":  "1",
		"date_format": "1",
		"range_from":  today.AddDate(0, 0, -days).Format("2006-01-02"),
		"range_to":    today.Format("2006-01-02"),
		"cont_flag":   "1",
	}
	headers := map[string]string{
		"Authorization": s.Tokens.AuthHeader(),
	}

	body, err := s.Network.Get(s.BaseURL, params, headers)
	if err != nil {
		return nil, helpers.NewFetchError(fmt.Sprintf("history request for %s failed", symbol), err)
	}

	series, err := ParseHistoryResponse(body)
	if err != nil {
		return nil, helpers.NewFetchError(fmt.Sprintf("history response for %s", symbol), err)
	}

	s.Logger.Debug("Fetched %s: %d candles", symbol, len(series))
	return series, nil
}

// -----------------------------------------------------------------------------

// QualifySymbol prefixes the exchange code and instrument-type suffix
// expected by the data API.
func QualifySymbol(symbol string) string {
	return fmt.Sprintf("NSE:%s-EQ", symbol)
}

// -----------------------------------------------------------------------------

// ParseHistoryResponse converts the raw payload into a chronological candle
// series. A missing candles key or non-ok status yields an empty series. Rows
// that are short or contain non-numeric cells are dropped rather than failing
// the whole series.
func ParseHistoryResponse(body []byte) (models.MCandleSeries, error) {
	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("api error: %s (code %d)", resp.Message, resp.Code)
	}

	if len(resp.Candles) == 0 {
		return nil, nil
	}

	series := make(models.MCandleSeries, 0, len(resp.Candles))
	for _, row := range resp.Candles {
		candle, ok := parseCandleRow(row)
		if !ok {
			continue
		}
		series = append(series, candle)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp < series[j].Timestamp
	})

	return series, nil
}

// -----------------------------------------------------------------------------

// parseCandleRow coerces one row's six cells to numbers. Unparsable cells
// mark the row invalid.
func parseCandleRow(row []json.RawMessage) (models.MCandle, bool) {
	if len(row) < 6 {
		return models.MCandle{}, false
	}

	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		var v float64
		if err := json.Unmarshal(row[i], &v); err != nil {
			return models.MCandle{}, false
		}
		vals[i] = v
	}

	return models.MCandle{
		Timestamp: int64(vals[0]),
		Open:      vals[1],
		High:      vals[2],
		Low:       vals[3],
		Close:     vals[4],
		Volume:    vals[5],
	}, true
}
