package server

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"imbalance-screener/src/config"
	"imbalance-screener/src/interfaces"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"
	"imbalance-screener/src/screener"
	"imbalance-screener/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// WebServer
// -----------------------------------------------------------------------------

type WebServer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *logger.Logger
	engine     *gin.Engine

	Scanner *screener.Engine
	Store   interfaces.IScanStore
	Tokens  interfaces.ITokenProvider

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MScanSnapshot
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// Local cache
	latestState *models.MScanSnapshot
	recentTicks *utils.SnapshotRing
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewWebServer(cfg *config.Config, cfgPath string, scanner *screener.Engine, store interfaces.IScanStore, tokens interfaces.ITokenProvider, log *logger.Logger) *WebServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &WebServer{
		Config:     cfg,
		ConfigPath: cfgPath,
		Logger:     log,
		engine:     gin.Default(),
		Scanner:    scanner,
		Store:      store,
		Tokens:     tokens,
		clients:    make(map[*Client]struct{}),
		// Buffered channel so a burst of ticks cannot block the scan loop
		broadcast:   make(chan *models.MScanSnapshot, 64),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		recentTicks: utils.NewSnapshotRing(120),
		latestState: &models.MScanSnapshot{
			Type:    "INITIAL",
			Results: []models.MImbalanceResult{},
		},
	}

	// CORS middleware for local frontends
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *WebServer) setupRoutes() {
	// Browser UI
	s.engine.GET("/", s.getIndex)

	// REST API endpoints
	s.engine.GET("/api/results", s.getResults)
	s.engine.GET("/api/settings", s.getSettings)
	s.engine.POST("/api/settings", s.postSettings)
	s.engine.GET("/api/history", s.getHistory)
	s.engine.GET("/api/ticks", s.getTicks)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Stop shuts down the Hub loop. The channels stay open so that late
// disconnects and broadcasts become no-ops instead of panics.
func (s *WebServer) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *WebServer) getResults(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(200, s.latestState)
}

// -----------------------------------------------------------------------------

func (s *WebServer) getSettings(c *gin.Context) {
	settings := s.Scanner.Settings()
	c.JSON(200, gin.H{
		"symbols":                  settings.Symbols,
		"multiplier":               settings.Multiplier,
		"refresh_interval_seconds": settings.RefreshIntervalSeconds,
		"multiplier_min":           models.MultiplierMin,
		"multiplier_max":           models.MultiplierMax,
		"refresh_min_seconds":      models.RefreshMinSeconds,
	})
}

// -----------------------------------------------------------------------------

// settingsRequest accepts either a parsed symbol list or the raw
// comma-separated text the UI widget holds.
type settingsRequest struct {
	Symbols                []string `json:"symbols"`
	SymbolsInput           string   `json:"symbols_input"`
	Multiplier             float64  `json:"multiplier"`
	RefreshIntervalSeconds int      `json:"refresh_interval_seconds"`
}

func (s *WebServer) postSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	symbols := req.Symbols
	if req.SymbolsInput != "" {
		symbols = screener.ParseSymbols(req.SymbolsInput)
	}

	settings := models.MScanSettings{
		Symbols:                symbols,
		Multiplier:             req.Multiplier,
		RefreshIntervalSeconds: req.RefreshIntervalSeconds,
	}

	if err := config.ValidateScanSettings(settings); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	s.Scanner.UpdateSettings(settings)

	// Persist so a restart keeps the adjusted watchlist.
	s.Config.Screener.Symbols = settings.Symbols
	s.Config.Screener.Multiplier = settings.Multiplier
	s.Config.Screener.RefreshIntervalSeconds = settings.RefreshIntervalSeconds
	if err := s.Config.Save(s.ConfigPath); err != nil {
		s.Logger.Warning("Failed to persist settings: %v", err)
	}

	c.JSON(200, gin.H{"status": "ok", "symbols": len(settings.Symbols)})
}

// -----------------------------------------------------------------------------

func (s *WebServer) getHistory(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	results, err := s.Store.RecentResults(limit)
	if err != nil {
		s.Logger.Error("History query failed: %v", err)
		c.JSON(500, gin.H{"error": "history unavailable"})
		return
	}
	if results == nil {
		results = []models.MImbalanceResult{}
	}

	c.JSON(200, gin.H{"results": results})
}

// -----------------------------------------------------------------------------

// getTicks serves the in-memory ring of recent scan snapshots, newest first.
// Unlike /api/history it covers every tick, matches or not, and survives
// without a store.
func (s *WebServer) getTicks(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	ticks := s.RecentTicks(limit)
	if ticks == nil {
		ticks = []*models.MScanSnapshot{}
	}
	c.JSON(200, gin.H{"ticks": ticks})
}

// -----------------------------------------------------------------------------

func (s *WebServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	lastScan := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": connections,
		"degraded":    s.Tokens.Degraded(),
		"last_scan":   lastScan,
		"server_time": time.Now().Unix(),
	})
}
