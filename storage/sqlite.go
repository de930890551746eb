package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pet-offers-bot/settings"
)

// SQLite is the default single-file backend.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens the database at path and initializes the schema.
func NewSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps the ledger's uniqueness checks free of SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &SQLite{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posted_products (
		item_id TEXT PRIMARY KEY,
		posted_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posted_products_posted_at ON posted_products(posted_at);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_identifier TEXT PRIMARY KEY,
		min_price REAL,
		max_price REAL,
		min_commission_rate REAL,
		max_commission_rate REAL,
		items_per_page INTEGER,
		max_pages_per_run INTEGER,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// IsPosted reports whether itemID is in the ledger.
func (db *SQLite) IsPosted(ctx context.Context, itemID string) (bool, error) {
	query := `SELECT 1 FROM posted_products WHERE item_id = ?`
	var dummy int
	err := db.conn.QueryRowContext(ctx, query, itemID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordPosted inserts itemID into the ledger (idempotent).
func (db *SQLite) RecordPosted(ctx context.Context, itemID string, at time.Time) (bool, error) {
	query := `INSERT OR IGNORE INTO posted_products (item_id, posted_at) VALUES (?, ?)`
	res, err := db.conn.ExecContext(ctx, query, itemID, at.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PostedStats returns the ledger size and its latest entry.
func (db *SQLite) PostedStats(ctx context.Context) (PostedStats, error) {
	var stats PostedStats
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posted_products`).Scan(&stats.Count); err != nil {
		return stats, err
	}
	if stats.Count == 0 {
		return stats, nil
	}

	query := `SELECT item_id, posted_at FROM posted_products ORDER BY posted_at DESC LIMIT 1`
	var postedAt time.Time
	if err := db.conn.QueryRowContext(ctx, query).Scan(&stats.LastItemID, &postedAt); err != nil {
		return stats, err
	}
	stats.LastPostedAt = &postedAt
	return stats, nil
}

// GetSettings returns the settings row for user, or nil when absent.
func (db *SQLite) GetSettings(ctx context.Context, user string) (*settings.Settings, error) {
	query := `
	SELECT min_price, max_price, min_commission_rate, max_commission_rate, items_per_page, max_pages_per_run
	FROM user_settings WHERE user_identifier = ?
	`

	var minPrice, maxPrice, minComm, maxComm sql.NullFloat64
	var itemsPerPage, maxPages sql.NullInt64

	err := db.conn.QueryRowContext(ctx, query, user).Scan(
		&minPrice, &maxPrice, &minComm, &maxComm, &itemsPerPage, &maxPages,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &settings.Settings{
		MinPrice:          nullFloat(minPrice),
		MaxPrice:          nullFloat(maxPrice),
		MinCommissionRate: nullFloat(minComm),
		MaxCommissionRate: nullFloat(maxComm),
		ItemsPerPage:      nullInt(itemsPerPage),
		MaxPagesPerRun:    nullInt(maxPages),
	}, nil
}

// SaveSettings upserts the whole settings row for user.
func (db *SQLite) SaveSettings(ctx context.Context, user string, s *settings.Settings) error {
	query := `
	INSERT INTO user_settings (user_identifier, min_price, max_price, min_commission_rate,
		max_commission_rate, items_per_page, max_pages_per_run, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_identifier) DO UPDATE SET
		min_price = excluded.min_price,
		max_price = excluded.max_price,
		min_commission_rate = excluded.min_commission_rate,
		max_commission_rate = excluded.max_commission_rate,
		items_per_page = excluded.items_per_page,
		max_pages_per_run = excluded.max_pages_per_run,
		updated_at = excluded.updated_at
	`

	_, err := db.conn.ExecContext(ctx, query,
		user,
		s.MinPrice,
		s.MaxPrice,
		s.MinCommissionRate,
		s.MaxCommissionRate,
		s.ItemsPerPage,
		s.MaxPagesPerRun,
		time.Now().UTC(),
	)
	return err
}

// GetSetting retrieves a value by key.
func (db *SQLite) GetSetting(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = ?`
	var value string
	err := db.conn.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting stores or updates a value.
func (db *SQLite) SetSetting(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := db.conn.ExecContext(ctx, query, key, value)
	return err
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
