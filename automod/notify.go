package automod

import (
	"sync"
	"time"
)

// default minimum gap between moderator alerts for one guild
const DefaultNotifyCooldown = time.Minute * 10

// NotificationThrottle rate-limits moderator alerts to one per guild per
// cooldown period, so a flood of violations does not become a flood of pings.
type NotificationThrottle struct {
	mu       sync.Mutex
	cooldown time.Duration
	lastSent map[string]time.Time
}

func NewNotificationThrottle(cooldown time.Duration) *NotificationThrottle {
	if cooldown <= 0 {
		cooldown = DefaultNotifyCooldown
	}
	return &NotificationThrottle{
		cooldown: cooldown,
		lastSent: make(map[string]time.Time),
	}
}

// ShouldNotify reports whether an alert may be sent for the guild now, and
// records the send time only when it returns true. A suppressed alert never
// pushes the cooldown forward.
func (t *NotificationThrottle) ShouldNotify(guildID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.lastSent[guildID]; ok && now.Sub(last) < t.cooldown {
		return false
	}
	t.lastSent[guildID] = now
	return true
}

// EvictOlderThan drops cooldown entries whose last send is before the cutoff.
// Returns how many were removed.
func (t *NotificationThrottle) EvictOlderThan(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for guildID, last := range t.lastSent {
		if last.Before(cutoff) {
			delete(t.lastSent, guildID)
			removed++
		}
	}
	return removed
}
