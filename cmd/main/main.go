package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"imbalance-screener/src/auth"
	"imbalance-screener/src/config"
	"imbalance-screener/src/data_source/fyers"
	"imbalance-screener/src/helpers"
	"imbalance-screener/src/interfaces"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"
	"imbalance-screener/src/network"
	"imbalance-screener/src/screener"
	"imbalance-screener/src/server"
	"imbalance-screener/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file. Missing credentials fail validation here,
	// which is the only fatal configuration error.
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 1. Scan store
	var store interfaces.IScanStore
	switch cfg.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.MConfig, appLogger.Named("PostgresStore"))
	case "none":
		store = storage.NewNoopStore()
	default:
		store, err = storage.NewSQLiteStore(cfg.MConfig, appLogger.Named("SQLiteStore"))
	}
	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}
	if err := helpers.RetryWithBackoff("store init", 3, time.Second, store.Initialize); err != nil {
		appLogger.Critical("Failed to migrate store: %v", err)
	}
	defer store.Close()

	// 2. Network + credentials. Token problems are non-fatal: the server
	// stays up in degraded mode and issues no queries.
	netMgr := network.NewHTTPManager(cfg.MConfig, appLogger.Named("HTTPManager"))
	session := auth.NewSessionManager(cfg.MConfig, netMgr, appLogger.Named("SessionManager"))
	session.Resolve()

	// 3. Candle source + scan engine
	source := fyers.NewHistorySource(cfg.MConfig, netMgr, session, appLogger.Named("FyersHistory"))
	scanner := screener.NewEngine(cfg.MConfig, source, session, appLogger.Named("ScanEngine"))

	// 4. Web server
	srv := server.NewWebServer(cfg, *configPath, scanner, store, session, appLogger.Named("WebServer"))
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 5. Main loop: consume scan snapshots, persist matches, broadcast.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}
	snapshots := make(chan *models.MScanSnapshot, 16)

	if err := scanner.Start(ctx, snapshots, wrapWg); err != nil {
		appLogger.Critical("Failed to start scan engine: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Screener running with %d symbols", len(cfg.Screener.Symbols))

	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				appLogger.Info("Scan engine closed channel.")
				return
			}

			if len(snapshot.Results) > 0 {
				if err := store.SaveResults(snapshot.Results); err != nil {
					appLogger.Error("Failed to persist results: %v", err)
				}
			}

			srv.Broadcast(snapshot)

			if err := store.CleanupOldData(); err != nil {
				appLogger.Error("Cleanup failed: %v", err)
			}

		case <-quit:
			appLogger.Info("Shutting down...")
			cancel()
			wrapWg.Wait()
			srv.Stop()
			return
		}
	}
}
