package timeline

import (
	"context"
	"strings"
	"sync"
	"time"
)

// In-process TimelineStore backed by a locked map of timestamp sequences.
// Suitable for single-node deployments; use RedisTimelineStore when counter
// state must survive restarts.
type MemTimelineStore struct {
	mu     sync.RWMutex
	series map[string][]int64
}

func NewMemTimelineStore() *MemTimelineStore {
	return &MemTimelineStore{
		series: make(map[string][]int64),
	}
}

func (s *MemTimelineStore) Record(ctx context.Context, name, key string, at time.Time) error {
	k := seriesKey(name, key)
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := append(s.series[k], at.UnixNano())
	if len(seq) > MaxEntriesPerKey {
		// drop oldest; copy so the backing array doesn't pin evicted entries
		trimmed := make([]int64, MaxEntriesPerKey)
		copy(trimmed, seq[len(seq)-MaxEntriesPerKey:])
		seq = trimmed
	}
	s.series[k] = seq
	return nil
}

func (s *MemTimelineStore) CountWithin(ctx context.Context, name, key string, now time.Time, window time.Duration) (int, error) {
	k := seriesKey(name, key)
	horizon := now.Add(-window).UnixNano()
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.series[k]
	if !ok {
		return 0, nil
	}
	// sequences are time-ordered (most recent last); scan newest backward
	// and stop at the first entry outside the window
	count := 0
	for i := len(seq) - 1; i >= 0; i-- {
		if seq[i] < horizon {
			break
		}
		count++
	}
	return count, nil
}

func (s *MemTimelineStore) EvictOlderThan(ctx context.Context, name string, cutoff time.Time) (int, error) {
	prefix := name + "/"
	horizon := cutoff.UnixNano()
	removed := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, seq := range s.series {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		keep := 0
		for keep < len(seq) && seq[keep] < horizon {
			keep++
		}
		if keep == 0 {
			continue
		}
		removed += keep
		if keep == len(seq) {
			delete(s.series, k)
			continue
		}
		trimmed := make([]int64, len(seq)-keep)
		copy(trimmed, seq[keep:])
		s.series[k] = trimmed
	}
	return removed, nil
}

// Keys reports the number of live keys in the named series. Used by tests
// and the janitor's debug logging.
func (s *MemTimelineStore) Keys(name string) int {
	prefix := name + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.series {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}
