// Package storage persists the posted-offer ledger, the settings row and
// small key/value state such as the current sort type.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-offers-bot/settings"
)

// ErrNotFound is returned when a key or row does not exist.
var ErrNotFound = errors.New("not found")

// PostedStats summarises the ledger.
type PostedStats struct {
	Count        int
	LastItemID   string
	LastPostedAt *time.Time
}

// Store is implemented by the relational backends.
type Store interface {
	// IsPosted reports whether itemID is in the ledger.
	IsPosted(ctx context.Context, itemID string) (bool, error)
	// RecordPosted appends itemID to the ledger. It returns false without an
	// error when the item was already recorded.
	RecordPosted(ctx context.Context, itemID string, at time.Time) (bool, error)
	PostedStats(ctx context.Context) (PostedStats, error)

	// GetSettings returns the settings row for user, or nil when none exists.
	GetSettings(ctx context.Context, user string) (*settings.Settings, error)
	SaveSettings(ctx context.Context, user string, s *settings.Settings) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	Close() error
}

// Open connects to the backend named by driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
