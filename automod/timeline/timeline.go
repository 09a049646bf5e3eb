package timeline

import (
	"context"
	"time"
)

// Counter series names used by the moderation engine. Each series has its
// own retention window, enforced by the janitor (see automod.RunJanitor).
const (
	SeriesMessage = "msg"
	SeriesCaps    = "caps"
	SeriesEmoji   = "emoji"
	SeriesJoin    = "join"
	SeriesOffense = "offense"
)

// Hard cap on retained entries per key, independent of time-based eviction.
// A single very bursty key can not grow memory between janitor passes.
const MaxEntriesPerKey = 50

// TimelineStore records per-key event timestamps and answers sliding-window
// count queries against them.
//
// Timestamps are appended in event-arrival order per key, so each key's
// sequence is time-ordered. EvictOlderThan is the only operation that frees
// memory; detectors never self-evict.
type TimelineStore interface {
	Record(ctx context.Context, name, key string, at time.Time) error
	CountWithin(ctx context.Context, name, key string, now time.Time, window time.Duration) (int, error)
	// EvictOlderThan removes all entries in the named series strictly older
	// than cutoff, and drops keys whose sequence becomes empty. Returns the
	// number of entries removed.
	EvictOlderThan(ctx context.Context, name string, cutoff time.Time) (int, error)
}

func seriesKey(name, key string) string {
	return name + "/" + key
}
