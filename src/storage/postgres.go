package storage

import (
	"database/sql"
	"time"

	"imbalance-screener/src/helpers"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewStorageError("failed to open postgres connection", err)
	}

	if err := db.Ping(); err != nil {
		return helpers.NewStorageError("postgres database unreachable", err)
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS imbalance_results (
			symbol TEXT,
			last_value_cr DOUBLE PRECISION,
			avg_value_cr DOUBLE PRECISION,
			close DOUBLE PRECISION,
			pct_move DOUBLE PRECISION,
			candles INTEGER,
			detected_at TIMESTAMPTZ,
			PRIMARY KEY (symbol, detected_at)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewStorageError("failed to create imbalance_results", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveResults(results []models.MImbalanceResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO imbalance_results (symbol, last_value_cr, avg_value_cr, close, pct_move, candles, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, detected_at) DO NOTHING
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

func (d *PostgresStore) RecentResults(limit int) ([]models.MImbalanceResult, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.DB.Query(`
		SELECT symbol, last_value_cr, avg_value_cr, close, pct_move, candles, detected_at
		FROM imbalance_results
		ORDER BY detected_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, helpers.NewStorageError("recent results query failed", err)
	}
	defer rows.Close()

	return scanResultRows(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) CleanupOldData() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -d.Config.Storage.RetentionDays)

	if _, err := d.DB.Exec("DELETE FROM imbalance_results WHERE detected_at < $1", cutoff); err != nil {
		d.Logger.Error("Cleanup imbalance_results error: %v", err)
		return err
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
