package timeline

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisTimelinePrefix string = "timeline/"

// backstop TTL so abandoned keys expire even if the janitor never runs
var redisTimelineTTL = 48 * time.Hour

// TimelineStore backed by redis sorted sets: one set per (series, key), with
// the entry timestamp as score. Sorted sets keep the sequence ordered on the
// server, so window queries are a single ZCOUNT round-trip.
type RedisTimelineStore struct {
	Client *redis.Client

	seq atomic.Uint64
}

func NewRedisTimelineStore(redisURL string) (*RedisTimelineStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisTimelineStore{Client: rdb}, nil
}

func (s *RedisTimelineStore) Record(ctx context.Context, name, key string, at time.Time) error {
	k := redisTimelinePrefix + seriesKey(name, key)
	// member must be unique per entry; two events in the same nanosecond
	// would otherwise collapse into one
	member := strconv.FormatInt(at.UnixNano(), 10) + "-" + strconv.FormatUint(s.seq.Add(1), 10)

	multi := s.Client.Pipeline()
	multi.ZAdd(ctx, k, redis.Z{Score: float64(at.UnixNano()), Member: member})
	multi.ZRemRangeByRank(ctx, k, 0, int64(-(MaxEntriesPerKey + 1)))
	multi.Expire(ctx, k, redisTimelineTTL)
	_, err := multi.Exec(ctx)
	return err
}

func (s *RedisTimelineStore) CountWithin(ctx context.Context, name, key string, now time.Time, window time.Duration) (int, error) {
	k := redisTimelinePrefix + seriesKey(name, key)
	min := strconv.FormatInt(now.Add(-window).UnixNano(), 10)
	c, err := s.Client.ZCount(ctx, k, min, "+inf").Result()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return int(c), nil
}

func (s *RedisTimelineStore) EvictOlderThan(ctx context.Context, name string, cutoff time.Time) (int, error) {
	pattern := redisTimelinePrefix + name + "/*"
	max := "(" + strconv.FormatInt(cutoff.UnixNano(), 10)
	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.Client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scanning timeline keys: %w", err)
		}
		for _, k := range keys {
			n, err := s.Client.ZRemRangeByScore(ctx, k, "-inf", max).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
			// redis drops empty sorted sets itself; nothing else to clean up
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return removed, nil
}
