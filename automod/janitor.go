package automod

import (
	"context"
	"time"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod/timeline"
)

// DefaultJanitorInterval is how often the janitor sweeps counters.
const DefaultJanitorInterval = time.Minute

// seriesRetention maps each counter series to how long entries stay useful.
// Retention is the longest window any rule measures over that series, so
// eviction never changes what a rule observes.
var seriesRetention = map[string]time.Duration{
	timeline.SeriesMessage: time.Minute * 10,
	timeline.SeriesCaps:    time.Minute * 10,
	timeline.SeriesEmoji:   time.Minute * 10,
	timeline.SeriesJoin:    time.Hour,
	timeline.SeriesOffense: time.Hour * 24,
}

// notification cooldown entries older than this are dead weight
const notifyRetention = time.Hour

// RunJanitor sweeps expired counter entries, stale notification cooldowns,
// and expired lockdowns until the context is cancelled. Intended to run as a
// single background goroutine per engine.
func (eng *Engine) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			eng.sweep(ctx, time.Now())
		}
	}
}

func (eng *Engine) sweep(ctx context.Context, now time.Time) {
	for series, retention := range seriesRetention {
		removed, err := eng.Timelines.EvictOlderThan(ctx, series, now.Add(-retention))
		if err != nil {
			eng.Logger.Warn("janitor eviction failed", "series", series, "err", err)
			continue
		}
		if removed > 0 {
			janitorEvictionCount.WithLabelValues(series).Add(float64(removed))
			eng.Logger.Debug("janitor evicted counter entries", "series", series, "count", removed)
		}
	}

	if eng.Notifications != nil {
		if removed := eng.Notifications.EvictOlderThan(now.Add(-notifyRetention)); removed > 0 {
			eng.Logger.Debug("janitor evicted notification cooldowns", "count", removed)
		}
	}

	for _, guildID := range eng.expiredLockdowns(now) {
		eng.Logger.Info("releasing expired lockdown", "guildID", guildID)
		actx, cancel := context.WithTimeout(ctx, actionTimeout)
		err := eng.Actions.Execute(actx, Action{
			Kind:    ActionUnlock,
			GuildID: guildID,
			Reason:  "automod: lockdown window elapsed",
		})
		cancel()
		if err != nil {
			actionErrorCount.WithLabelValues(string(ActionUnlock)).Inc()
			eng.Logger.Error("lockdown release failed", "guildID", guildID, "err", err)
		}
	}
}
