// Package settings resolves the per-run offer filters from the persisted
// settings row.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// DefaultUser identifies the settings row used when none is configured.
const DefaultUser = "default"

// Settings is the persisted row. Every field is optional.
type Settings struct {
	MinPrice          *float64
	MaxPrice          *float64
	MinCommissionRate *float64
	MaxCommissionRate *float64
	ItemsPerPage      *int
	MaxPagesPerRun    *int
}

// Effective holds the values a run actually uses.
type Effective struct {
	MinPrice          float64 `json:"minPrice"`
	MaxPrice          float64 `json:"maxPrice"`
	MinCommissionRate float64 `json:"minCommissionRate"`
	MaxCommissionRate float64 `json:"maxCommissionRate"`
	ItemsPerPage      int     `json:"itemsPerPage"`
	MaxPagesPerRun    int     `json:"maxPagesPerRun"`
}

// Defaults apply to every field missing from the row.
var Defaults = Effective{
	MinPrice:          1.0,
	MaxPrice:          100.0,
	MinCommissionRate: 2.5,
	MaxCommissionRate: 15.0,
	ItemsPerPage:      100,
	MaxPagesPerRun:    5,
}

// Store loads the settings row for a user. A nil row with a nil error means
// no row exists.
type Store interface {
	GetSettings(ctx context.Context, user string) (*Settings, error)
}

// Apply merges row over Defaults. Zero and negative values count as unset.
func Apply(row *Settings) Effective {
	eff := Defaults
	if row == nil {
		return eff
	}
	eff.MinPrice = floatOr(row.MinPrice, eff.MinPrice)
	eff.MaxPrice = floatOr(row.MaxPrice, eff.MaxPrice)
	eff.MinCommissionRate = floatOr(row.MinCommissionRate, eff.MinCommissionRate)
	eff.MaxCommissionRate = floatOr(row.MaxCommissionRate, eff.MaxCommissionRate)
	eff.ItemsPerPage = intOr(row.ItemsPerPage, eff.ItemsPerPage)
	eff.MaxPagesPerRun = intOr(row.MaxPagesPerRun, eff.MaxPagesPerRun)
	return eff
}

// Resolve reads the row for user and applies it. It never fails: a missing
// or unreadable row yields Defaults.
func Resolve(ctx context.Context, store Store, user string) Effective {
	row, err := store.GetSettings(ctx, user)
	if err != nil {
		slog.Warn("settings lookup failed, using defaults", "user", user, "error", err)
		return Defaults
	}
	if row == nil {
		slog.Debug("no settings row, using defaults", "user", user)
	}
	eff := Apply(row)
	if eff.MinPrice > eff.MaxPrice {
		slog.Warn("min price above max price, no offer can qualify",
			"min_price", eff.MinPrice, "max_price", eff.MaxPrice)
	}
	return eff
}

func floatOr(v *float64, def float64) float64 {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

// Field names accepted by SetField, in display order.
var Fields = []string{
	"min_price",
	"max_price",
	"min_commission_rate",
	"max_commission_rate",
	"items_per_page",
	"max_pages_per_run",
}

// SetField parses value into the named field of s. The value "reset" clears
// the field so the default applies again.
func (s *Settings) SetField(field, value string) error {
	value = strings.TrimSpace(value)
	reset := strings.EqualFold(value, "reset")

	switch field {
	case "min_price":
		return setFloat(&s.MinPrice, value, reset)
	case "max_price":
		return setFloat(&s.MaxPrice, value, reset)
	case "min_commission_rate":
		return setFloat(&s.MinCommissionRate, value, reset)
	case "max_commission_rate":
		return setFloat(&s.MaxCommissionRate, value, reset)
	case "items_per_page":
		return setInt(&s.ItemsPerPage, value, reset)
	case "max_pages_per_run":
		return setInt(&s.MaxPagesPerRun, value, reset)
	default:
		return fmt.Errorf("unknown settings field %q", field)
	}
}

func setFloat(dst **float64, value string, reset bool) error {
	if reset {
		*dst = nil
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("invalid number %q", value)
	}
	*dst = &f
	return nil
}

func setInt(dst **int, value string, reset bool) error {
	if reset {
		*dst = nil
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid positive integer %q", value)
	}
	*dst = &n
	return nil
}
