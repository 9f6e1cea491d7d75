package screener

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"imbalance-screener/src/interfaces"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"
	"imbalance-screener/src/utils"
)

// -----------------------------------------------------------------------------

// Engine runs the scan loop: one full pass over the symbol list per tick,
// sequential, run-to-completion. A long scan simply delays the next tick;
// ticks never overlap and no state is carried between them.
type Engine struct {
	Config      *models.MConfig
	Source      interfaces.IHistorySource
	Tokens      interfaces.ITokenProvider
	Logger      *logger.Logger
	MarketHours *utils.MarketHours

	settings   atomic.Value // models.MScanSettings
	cancelFunc context.CancelFunc
	isRunning  atomic.Bool
	mu         sync.Mutex

	closedLogged bool
}

// -----------------------------------------------------------------------------

func NewEngine(cfg *models.MConfig, source interfaces.IHistorySource, tokens interfaces.ITokenProvider, log *logger.Logger) *Engine {
	e := &Engine{
		Config:      cfg,
		Source:      source,
		Tokens:      tokens,
		Logger:      log,
		MarketHours: utils.NewMarketHours(log.Named("MarketHours")),
	}
	e.settings.Store(models.MScanSettings{
		Symbols:                cfg.Screener.Symbols,
		Multiplier:             cfg.Screener.Multiplier,
		RefreshIntervalSeconds: cfg.Screener.RefreshIntervalSeconds,
	})
	return e
}

// -----------------------------------------------------------------------------

// Settings returns the current scan settings.
func (e *Engine) Settings() models.MScanSettings {
	return e.settings.Load().(models.MScanSettings)
}

// -----------------------------------------------------------------------------

// UpdateSettings swaps the scan settings atomically. The new values take
// effect on the next tick; a changed interval resets the ticker.
func (e *Engine) UpdateSettings(s models.MScanSettings) {
	e.settings.Store(s)
	e.Logger.Info("Updated scan settings: %d symbols, multiplier %.1f, interval %ds",
		len(s.Symbols), s.Multiplier, s.RefreshIntervalSeconds)
}

// -----------------------------------------------------------------------------

// Start launches the scan loop. Snapshots are pushed to outputChan; the
// WaitGroup is released when the loop exits.
func (e *Engine) Start(parentCtx context.Context, outputChan chan<- *models.MScanSnapshot, wg *sync.WaitGroup) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isRunning.Load() {
		return fmt.Errorf("scan engine is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	e.cancelFunc = cancel
	e.isRunning.Store(true)

	wg.Add(1)
	go e.runLoop(ctx, outputChan, wg)
	e.Logger.Info("Started scan engine")
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning.Load() {
		return fmt.Errorf("scan engine is not running")
	}

	if e.cancelFunc != nil {
		e.cancelFunc()
	}
	e.isRunning.Store(false)
	e.Logger.Info("Stopped scan engine")
	return nil
}

// -----------------------------------------------------------------------------

func (e *Engine) runLoop(ctx context.Context, outputChan chan<- *models.MScanSnapshot, wg *sync.WaitGroup) {
	defer wg.Done()

	interval := time.Duration(e.Settings().RefreshIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First scan immediately so the UI has data before the first tick.
	e.scanAndPush(ctx, outputChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.scanAndPush(ctx, outputChan)

			// Apply an interval change between ticks.
			if next := time.Duration(e.Settings().RefreshIntervalSeconds) * time.Second; next != interval {
				interval = next
				ticker.Reset(interval)
				e.Logger.Info("Refresh interval changed to %v", interval)
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) scanAndPush(ctx context.Context, outputChan chan<- *models.MScanSnapshot) {
	snapshot := e.Scan()
	select {
	case outputChan <- snapshot:
	case <-ctx.Done():
	}
}

// -----------------------------------------------------------------------------

// Scan executes one full pass: fetch then evaluate for every symbol in order,
// collect matches, sort descending by last traded value.
func (e *Engine) Scan() *models.MScanSnapshot {
	started := time.Now()
	settings := e.Settings()

	snapshot := &models.MScanSnapshot{
		Type:           "UPDATE",
		Results:        []models.MImbalanceResult{},
		SymbolsScanned: len(settings.Symbols),
		Degraded:       e.Tokens.Degraded(),
		Timestamp:      started.Unix(),
	}

	if e.Config.Screener.MarketHoursOnly && !e.MarketHours.IsOpen(started) {
		snapshot.MarketClosed = true
		if !e.closedLogged {
			e.Logger.Info("Market closed, skipping scans until it reopens")
			e.closedLogged = true
		}
		snapshot.ScanTimeSeconds = time.Since(started).Seconds()
		return snapshot
	}
	e.closedLogged = false

	if snapshot.Degraded {
		snapshot.Notices = append(snapshot.Notices, "no access token available, queries disabled")
		snapshot.ScanTimeSeconds = time.Since(started).Seconds()
		return snapshot
	}

	for _, symbol := range settings.Symbols {
		series, err := e.Source.FetchCandles(symbol, e.Config.Screener.LookbackDays)
		if err != nil {
			// Non-fatal: note it and continue with the next symbol.
			e.Logger.Info("Error fetching %s: %v", symbol, err)
			snapshot.Notices = append(snapshot.Notices, fmt.Sprintf("%s: fetch failed", symbol))
			continue
		}

		// Insufficient data or a degenerate average is a silent skip.
		if result := Evaluate(symbol, series, settings.Multiplier); result != nil {
			snapshot.Results = append(snapshot.Results, *result)
		}
	}

	SortResults(snapshot.Results)
	snapshot.Matches = len(snapshot.Results)
	snapshot.ScanTimeSeconds = time.Since(started).Seconds()

	e.Logger.Info("Scan complete: %d/%d symbols matched in %.2fs",
		snapshot.Matches, snapshot.SymbolsScanned, snapshot.ScanTimeSeconds)

	return snapshot
}
