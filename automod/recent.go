package automod

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RecentContentStore keeps a short per-subject window of recent message
// bodies for duplicate detection. Entries expire on their own so idle
// subjects cost nothing; the janitor never needs to touch this store.
type RecentContentStore struct {
	mu   sync.Mutex
	data *expirable.LRU[string, []string]
}

func NewRecentContentStore(capacity int, ttl time.Duration) *RecentContentStore {
	return &RecentContentStore{
		data: expirable.NewLRU[string, []string](capacity, nil, ttl),
	}
}

// Append adds a lower-cased copy of content to the subject's history and
// returns the trailing keep entries, newest last.
func (s *RecentContentStore) Append(key, content string, keep int) []string {
	if keep <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, _ := s.data.Get(key)
	next := append(prev, strings.ToLower(content))
	if len(next) > keep {
		next = next[len(next)-keep:]
	}
	// copy so the stored slice never aliases a caller-visible one
	stored := make([]string, len(next))
	copy(stored, next)
	s.data.Add(key, stored)
	return next
}
