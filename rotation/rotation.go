// Package rotation tracks which Shopee sort type a run should start with.
package rotation

import (
	"context"
	"log/slog"
	"strconv"
)

// Key is the logical name the current sort type is stored under.
const Key = "current_sort_type"

// DefaultSortType is used when nothing usable is stored.
const DefaultSortType = 1

// Priority is the fixed order sort types are cycled through.
var Priority = []int{1, 4, 2, 5}

// KV is the key/value store backing the rotation.
type KV interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Sequence returns Priority rotated so current comes first. An unknown
// current yields Priority unchanged.
func Sequence(current int) []int {
	seq := make([]int, 0, len(Priority))
	idx := indexOf(Priority, current)
	if idx == -1 {
		return append(seq, Priority...)
	}
	seq = append(seq, Priority[idx:]...)
	return append(seq, Priority[:idx]...)
}

// NextAfter returns the entry following used in seq, wrapping around. A used
// value missing from seq yields seq[0].
func NextAfter(seq []int, used int) int {
	if len(seq) == 0 {
		return DefaultSortType
	}
	return seq[(indexOf(seq, used)+1)%len(seq)]
}

// IsKnown reports whether id is one of the Priority sort types.
func IsKnown(id int) bool {
	return indexOf(Priority, id) != -1
}

func indexOf(list []int, v int) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// Tracker reads and persists the current sort type. Failures never block a
// run: reads fall back to DefaultSortType and writes are only logged.
type Tracker struct {
	store KV
	key   string
}

// NewTracker creates a Tracker storing under Key.
func NewTracker(store KV) *Tracker {
	return &Tracker{store: store, key: Key}
}

// Current returns the stored sort type, or DefaultSortType when absent or
// unreadable.
func (t *Tracker) Current(ctx context.Context) int {
	raw, err := t.store.GetSetting(ctx, t.key)
	if err != nil {
		slog.Debug("sort type not available, using default", "key", t.key, "error", err)
		return DefaultSortType
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("stored sort type is not a number, using default", "key", t.key, "value", raw)
		return DefaultSortType
	}
	return v
}

// SaveNext persists id for the next run.
func (t *Tracker) SaveNext(ctx context.Context, id int) {
	if err := t.store.SetSetting(ctx, t.key, strconv.Itoa(id)); err != nil {
		slog.Warn("failed to save next sort type", "key", t.key, "sort_type", id, "error", err)
		return
	}
	slog.Debug("saved next sort type", "sort_type", id)
}
