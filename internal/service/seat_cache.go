package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// SeatCache stores the per-booking seat allocations of a showtime in Redis.
// Entries hold allocations rather than a flattened seat list so one entry
// serves every excludeBookingId.  A nil cache or a Redis failure is a miss.
//
// Each entry has a generation counter that Invalidate bumps.  A reader that
// missed gets the generation as a fill token, and Set only stores when the
// generation is unchanged, so allocations read before a booking committed
// never land after its invalidation.
type SeatCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// generationTTL outlives any database read between Get and Set.
const generationTTL = 24 * time.Hour

// fillIfCurrent stores ARGV[2] under KEYS[1] for ARGV[3] ms when KEYS[2]
// still holds the generation ARGV[1].  Returns 1 when stored.
var fillIfCurrent = redis.NewScript(`
	local gen = redis.call('GET', KEYS[2]) or ''
	if gen ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[2], 'PX', tonumber(ARGV[3]))
	return 1
`)

// NewSeatCache returns a cache with the given TTL.  rdb may be nil.
func NewSeatCache(rdb *redis.Client, ttl time.Duration) *SeatCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SeatCache{rdb: rdb, ttl: ttl}
}

// SeatCacheKey is the Redis key of a showtime.  An empty movie name is the
// entry for every movie at that date and time.
func SeatCacheKey(movieName, movieDate, movieTime string) string {
	return fmt.Sprintf("seats:%s|%s|%s", movieDate, movieTime, movieName)
}

func generationKey(key string) string {
	return "seatgen:" + strings.TrimPrefix(key, "seats:")
}

// Get returns the cached allocations and whether the entry existed.  On a
// miss fill is the token to hand to Set.
func (c *SeatCache) Get(ctx context.Context, key string) (allocs []model.SeatAllocation, fill string, ok bool) {
	if c == nil || c.rdb == nil {
		return nil, "", false
	}
	vals, err := c.rdb.MGet(ctx, key, generationKey(key)).Result()
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("seat cache get failed")
		return nil, "", false
	}
	if len(vals) == 2 {
		fill, _ = vals[1].(string)
	}
	raw, hit := vals[0].(string)
	if !hit {
		return nil, fill, false
	}
	if err := json.Unmarshal([]byte(raw), &allocs); err != nil {
		return nil, fill, false
	}
	return allocs, fill, true
}

// Set stores allocs under key unless key was invalidated since the Get that
// returned fill.
func (c *SeatCache) Set(ctx context.Context, key, fill string, allocs []model.SeatAllocation) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(allocs)
	if err != nil {
		return
	}
	keys := []string{key, generationKey(key)}
	if err := fillIfCurrent.Run(ctx, c.rdb, keys, fill, string(raw), c.ttl.Milliseconds()).Err(); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("seat cache set failed")
	}
}

// Invalidate drops the entries of every given showtime, both the
// movie-specific key and the any-movie key for its date and time, and bumps
// their generations.
func (c *SeatCache) Invalidate(ctx context.Context, showtimes ...model.Showtime) {
	if c == nil || c.rdb == nil || len(showtimes) == 0 {
		return
	}
	keys := lo.Uniq(lo.FlatMap(showtimes, func(st model.Showtime, _ int) []string {
		return []string{
			SeatCacheKey(st.MovieName, st.MovieDate, st.MovieTime),
			SeatCacheKey("", st.MovieDate, st.MovieTime),
		}
	}))
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, generationKey(k))
			pipe.Expire(ctx, generationKey(k), generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("seat cache invalidate failed")
	}
}
