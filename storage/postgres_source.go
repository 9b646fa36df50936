package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"pricerecommender/models"
	"pricerecommender/utils"
)

// PostgresSource serves InternalRecords from a relational backend.
// Schema migration follows the teacher's PostgresWriter shape exactly;
// this is the reader-side counterpart. Connection retry goes through
// utils.RetryConfig instead of the teacher's hand-rolled loop.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens a connection, retrying the initial ping via
// utils.RetryConfig's exponential back-off (docker-compose Postgres
// containers take a few seconds to accept connections), and ensures
// the internal_records table and its lookup indexes exist.
func NewPostgresSource(dsn string, logger *utils.Logger) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresSource{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresSource) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS internal_records (
			item_id          TEXT PRIMARY KEY,
			upc              TEXT NOT NULL DEFAULT '',
			department       TEXT NOT NULL DEFAULT '',
			category         TEXT NOT NULL DEFAULT '',
			subcategory      TEXT NOT NULL DEFAULT '',
			brand            TEXT NOT NULL DEFAULT '',
			production_date  DATE NOT NULL,
			sold_date        DATE,
			days_to_sell     INTEGER,
			production_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			sold_price       NUMERIC(10,2)
		);

		CREATE INDEX IF NOT EXISTS idx_internal_records_upc         ON internal_records(upc);
		CREATE INDEX IF NOT EXISTS idx_internal_records_brand       ON internal_records(brand);
		CREATE INDEX IF NOT EXISTS idx_internal_records_category    ON internal_records(category);
		CREATE INDEX IF NOT EXISTS idx_internal_records_subcategory ON internal_records(subcategory);
		CREATE INDEX IF NOT EXISTS idx_internal_records_department  ON internal_records(department);
	`)
	return err
}

// LoadAll queries every row. Called once at startup by the
// orchestrator's bootstrap, same as the CSV backend, so the matching
// engine always operates on an immutable in-memory index regardless
// of which backend is configured.
func (ps *PostgresSource) LoadAll() ([]models.InternalRecord, error) {
	rows, err := ps.db.Query(`
		SELECT item_id, upc, department, category, subcategory, brand,
		       production_date, sold_date, days_to_sell, production_price, sold_price
		FROM internal_records
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load all: %w", err)
	}
	defer rows.Close()

	var records []models.InternalRecord
	for rows.Next() {
		var rec models.InternalRecord
		var soldDate sql.NullTime
		var daysToSell sql.NullInt64
		var soldPrice sql.NullFloat64

		if err := rows.Scan(
			&rec.ItemID, &rec.UPC, &rec.Department, &rec.Category, &rec.Subcategory, &rec.Brand,
			&rec.ProductionDate, &soldDate, &daysToSell, &rec.ProductionPrice, &soldPrice,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		if soldDate.Valid {
			rec.SoldDate = &soldDate.Time
		}
		if daysToSell.Valid {
			n := int(daysToSell.Int64)
			rec.DaysToSell = &n
		}
		if soldPrice.Valid {
			rec.SoldPrice = &soldPrice.Float64
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

func (ps *PostgresSource) Close() error {
	return ps.db.Close()
}
