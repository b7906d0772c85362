// Package ledger defines interfaces and implementations for the usage counter store.
package ledger

import (
	"context"
	"time"

	"github.com/moonuidesign/quotagate/internal/model"
)

// Ledger is the persisted quota counter keyed by (identity, action, window).
// Count is a pure read so that denied checks never charge quota; Increment is
// a single atomic upsert so concurrent increments never lose updates.
type Ledger interface {
	// Count returns consumed quota for the window; 0 when no row exists yet.
	Count(ctx context.Context, key string, action model.ActionKind, windowStart time.Time) (int64, error)
	// Increment adds one use and returns the new count, creating the window row lazily.
	Increment(ctx context.Context, key string, action model.ActionKind, windowStart time.Time) (int64, error)
}

// WindowFor returns the start of the UTC calendar-day quota window containing t.
func WindowFor(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// WindowEnd returns the exclusive end of the window starting at start.
func WindowEnd(start time.Time) time.Time {
	return start.Add(24 * time.Hour)
}
