package timeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemTimelineStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ts := NewMemTimelineStore()
	now := time.Now()

	c, err := ts.CountWithin(ctx, "msg", "g1/u1", now, time.Minute)
	assert.NoError(err)
	assert.Equal(0, c)

	assert.NoError(ts.Record(ctx, "msg", "g1/u1", now.Add(-30*time.Second)))
	assert.NoError(ts.Record(ctx, "msg", "g1/u1", now.Add(-10*time.Second)))
	assert.NoError(ts.Record(ctx, "msg", "g1/u1", now))

	c, err = ts.CountWithin(ctx, "msg", "g1/u1", now, time.Minute)
	assert.NoError(err)
	assert.Equal(3, c)

	// entries outside the requested window are never counted
	c, err = ts.CountWithin(ctx, "msg", "g1/u1", now, 15*time.Second)
	assert.NoError(err)
	assert.Equal(2, c)

	c, err = ts.CountWithin(ctx, "msg", "g1/u1", now, 5*time.Second)
	assert.NoError(err)
	assert.Equal(1, c)

	// other keys and series are independent
	c, err = ts.CountWithin(ctx, "msg", "g1/u2", now, time.Minute)
	assert.NoError(err)
	assert.Equal(0, c)
	c, err = ts.CountWithin(ctx, "join", "g1/u1", now, time.Minute)
	assert.NoError(err)
	assert.Equal(0, c)
}

func TestMemTimelineStoreWindowExclusion(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ts := NewMemTimelineStore()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		assert.NoError(ts.Record(ctx, "msg", "k", base.Add(time.Duration(i)*time.Second)))
	}
	now := base.Add(19 * time.Second)

	// window of d seconds covers entries with age <= d
	for _, tc := range []struct {
		window time.Duration
		want   int
	}{
		{0, 1},
		{1 * time.Second, 2},
		{5 * time.Second, 6},
		{19 * time.Second, 20},
		{time.Hour, 20},
	} {
		c, err := ts.CountWithin(ctx, "msg", "k", now, tc.window)
		assert.NoError(err)
		assert.Equal(tc.want, c, "window=%s", tc.window)
	}
}

func TestMemTimelineStorePerKeyCap(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ts := NewMemTimelineStore()
	base := time.Now()
	for i := 0; i < MaxEntriesPerKey*3; i++ {
		assert.NoError(ts.Record(ctx, "msg", "bursty", base.Add(time.Duration(i)*time.Millisecond)))
	}

	c, err := ts.CountWithin(ctx, "msg", "bursty", base.Add(time.Second), time.Hour)
	assert.NoError(err)
	assert.Equal(MaxEntriesPerKey, c)
}

func TestMemTimelineStoreEviction(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ts := NewMemTimelineStore()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(ts.Record(ctx, "join", "g1", base))
	assert.NoError(ts.Record(ctx, "join", "g1", base.Add(time.Minute)))
	assert.NoError(ts.Record(ctx, "join", "g2", base))
	assert.NoError(ts.Record(ctx, "msg", "g1/u1", base))

	removed, err := ts.EvictOlderThan(ctx, "join", base.Add(30*time.Second))
	assert.NoError(err)
	assert.Equal(2, removed)

	// g2's sequence became empty, so the key itself is gone
	assert.Equal(1, ts.Keys("join"))
	// other series untouched
	assert.Equal(1, ts.Keys("msg"))

	// eviction is idempotent: a second pass with no new events removes nothing
	removed, err = ts.EvictOlderThan(ctx, "join", base.Add(30*time.Second))
	assert.NoError(err)
	assert.Equal(0, removed)

	c, err := ts.CountWithin(ctx, "join", "g1", base.Add(time.Minute), time.Hour)
	assert.NoError(err)
	assert.Equal(1, c)
}

func TestMemTimelineStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ts := NewMemTimelineStore()
	now := time.Now()

	// writers, readers, and an evictor in parallel; run with -race
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(ts.Record(ctx, "msg", "g1/u1", now))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := ts.CountWithin(ctx, "msg", "g1/u1", now, time.Minute)
			assert.NoError(err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := ts.EvictOlderThan(ctx, "msg", now.Add(-time.Minute))
			assert.NoError(err)
		}
	}()
	wg.Wait()

	c, err := ts.CountWithin(ctx, "msg", "g1/u1", now, time.Minute)
	assert.NoError(err)
	assert.Equal(MaxEntriesPerKey, c)
}
