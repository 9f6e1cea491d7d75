package storage

import (
	"database/sql"
	"fmt"
	"time"

	"imbalance-screener/src/helpers"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return helpers.NewStorageError("failed to open sqlite database", err)
	}

	if err := db.Ping(); err != nil {
		return helpers.NewStorageError(fmt.Sprintf("sqlite database '%s' unreachable", d.Config.Storage.DBPath), err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS imbalance_results (
			symbol TEXT,
			last_value_cr REAL,
			avg_value_cr REAL,
			close REAL,
			pct_move REAL,
			candles INTEGER,
			detected_at TIMESTAMP,
			PRIMARY KEY (symbol, detected_at)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewStorageError("failed to create imbalance_results", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveResults(results []models.MImbalanceResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO imbalance_results (symbol, last_value_cr, avg_value_cr, close, pct_move, candles, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.Exec(r.Symbol, r.LastValueCr, r.AvgValueCr, r.Close, r.PctMove, r.Candles, r.DetectedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) RecentResults(limit int) ([]models.MImbalanceResult, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.DB.Query(`
		SELECT symbol, last_value_cr, avg_value_cr, close, pct_move, candles, detected_at
		FROM imbalance_results
		ORDER BY detected_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, helpers.NewStorageError("recent results query failed", err)
	}
	defer rows.Close()

	return scanResultRows(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) CleanupOldData() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -d.Config.Storage.RetentionDays)

	if _, err := d.DB.Exec("DELETE FROM imbalance_results WHERE detected_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup imbalance_results error: %v", err)
		return err
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// scanResultRows is shared between the sqlite and postgres stores.
func scanResultRows(rows *sql.Rows) ([]models.MImbalanceResult, error) {
	var results []models.MImbalanceResult
	for rows.Next() {
		var r models.MImbalanceResult
		if err := rows.Scan(&r.Symbol, &r.LastValueCr, &r.AvgValueCr, &r.Close, &r.PctMove, &r.Candles, &r.DetectedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
