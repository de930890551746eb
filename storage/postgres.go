package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pet-offers-bot/settings"
)

// Postgres stores the same tables in PostgreSQL through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates and verifies a pool, then initializes the schema.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	db := &Postgres{pool: pool}
	if err := db.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Close releases the pool.
func (db *Postgres) Close() error {
	db.pool.Close()
	return nil
}

func (db *Postgres) initSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS posted_products (
		item_id TEXT PRIMARY KEY,
		posted_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posted_products_posted_at ON posted_products(posted_at);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_identifier TEXT PRIMARY KEY,
		min_price DOUBLE PRECISION,
		max_price DOUBLE PRECISION,
		min_commission_rate DOUBLE PRECISION,
		max_commission_rate DOUBLE PRECISION,
		items_per_page INTEGER,
		max_pages_per_run INTEGER,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`)
	return err
}

func (db *Postgres) IsPosted(ctx context.Context, itemID string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posted_products WHERE item_id = $1)`, itemID,
	).Scan(&exists)
	return exists, err
}

func (db *Postgres) RecordPosted(ctx context.Context, itemID string, at time.Time) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO posted_products (item_id, posted_at) VALUES ($1, $2) ON CONFLICT (item_id) DO NOTHING`,
		itemID, at.UTC(),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (db *Postgres) PostedStats(ctx context.Context) (PostedStats, error) {
	var stats PostedStats
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posted_products`).Scan(&stats.Count); err != nil {
		return stats, err
	}
	if stats.Count == 0 {
		return stats, nil
	}

	var postedAt time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT item_id, posted_at FROM posted_products ORDER BY posted_at DESC LIMIT 1`,
	).Scan(&stats.LastItemID, &postedAt)
	if err != nil {
		return stats, err
	}
	stats.LastPostedAt = &postedAt
	return stats, nil
}

func (db *Postgres) GetSettings(ctx context.Context, user string) (*settings.Settings, error) {
	var s settings.Settings
	var itemsPerPage, maxPages *int32

	err := db.pool.QueryRow(ctx, `
		SELECT min_price, max_price, min_commission_rate, max_commission_rate, items_per_page, max_pages_per_run
		FROM user_settings WHERE user_identifier = $1`, user,
	).Scan(&s.MinPrice, &s.MaxPrice, &s.MinCommissionRate, &s.MaxCommissionRate, &itemsPerPage, &maxPages)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.ItemsPerPage = widen(itemsPerPage)
	s.MaxPagesPerRun = widen(maxPages)
	return &s, nil
}

func (db *Postgres) SaveSettings(ctx context.Context, user string, s *settings.Settings) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO user_settings (user_identifier, min_price, max_price, min_commission_rate,
			max_commission_rate, items_per_page, max_pages_per_run, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_identifier) DO UPDATE SET
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			min_commission_rate = EXCLUDED.min_commission_rate,
			max_commission_rate = EXCLUDED.max_commission_rate,
			items_per_page = EXCLUDED.items_per_page,
			max_pages_per_run = EXCLUDED.max_pages_per_run,
			updated_at = NOW()`,
		user, s.MinPrice, s.MaxPrice, s.MinCommissionRate, s.MaxCommissionRate,
		narrow(s.ItemsPerPage), narrow(s.MaxPagesPerRun),
	)
	return err
}

func (db *Postgres) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (db *Postgres) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value,
	)
	return err
}

func widen(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func narrow(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
