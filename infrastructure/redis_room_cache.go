package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"betroom/events"
	"betroom/models"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	roomCacheKeyPrefix  = "betroom:room:"
	roomClosedKeyPrefix = "betroom:room-closed:"

	minClosedMarkerTTL = time.Minute
)

// setOpenRoomScript writes an open room unless the room has been marked closed.
// KEYS[1] is the entry, KEYS[2] the closed marker, ARGV[2] the TTL in ms (0 = none).
var setOpenRoomScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
	return 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return client, nil
}

// RedisRoomCache stores room read models as JSON under a TTL.
// Cache failures are logged and treated as misses; the database stays authoritative.
//
// A reader may load a room just before it is closed and write the open read model back
// after the close invalidated it. Closing therefore leaves a marker that makes later
// writes of the open model no-ops, so a closed room is never served as open.
type RedisRoomCache struct {
	rdb       redis.UniversalClient
	ttl       time.Duration
	markerTTL time.Duration
}

// NewRedisRoomCache creates a room cache on top of a Redis client
func NewRedisRoomCache(rdb redis.UniversalClient, ttl time.Duration) *RedisRoomCache {
	return &RedisRoomCache{rdb: rdb, ttl: ttl, markerTTL: max(2*ttl, minClosedMarkerTTL)}
}

func roomCacheKey(code string) string {
	return roomCacheKeyPrefix + code
}

func roomClosedKey(code string) string {
	return roomClosedKeyPrefix + code
}

// Get returns the cached read model of a room
func (c *RedisRoomCache) Get(ctx context.Context, code string) (*models.RoomDetail, bool) {
	val, err := c.rdb.Get(ctx, roomCacheKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.WithError(err).WithField("code", code).Warn("Room cache read failed")
		return nil, false
	}

	var detail models.RoomDetail
	if err := json.Unmarshal(val, &detail); err != nil {
		log.WithError(err).WithField("code", code).Warn("Discarding undecodable room cache entry")
		c.Invalidate(ctx, code)
		return nil, false
	}
	return &detail, true
}

// Set stores a room read model. Closed rooms never change again and are kept
// without expiry; open rooms are skipped once the room has been marked closed.
func (c *RedisRoomCache) Set(ctx context.Context, detail *models.RoomDetail) {
	code := detail.Room.Code
	b, err := json.Marshal(detail)
	if err != nil {
		log.WithError(err).WithField("code", code).Warn("Failed to encode room for cache")
		return
	}

	if !detail.Room.IsOpen {
		if err := c.rdb.Set(ctx, roomCacheKey(code), b, 0).Err(); err != nil {
			log.WithError(err).WithField("code", code).Warn("Room cache write failed")
		}
		return
	}

	written, err := setOpenRoomScript.Run(ctx, c.rdb,
		[]string{roomCacheKey(code), roomClosedKey(code)},
		b, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		log.WithError(err).WithField("code", code).Warn("Room cache write failed")
		return
	}
	if written == 0 {
		log.WithField("code", code).Debug("Skipped caching open state of a closed room")
	}
}

// MarkClosed records that a room has closed and drops its cached read model
func (c *RedisRoomCache) MarkClosed(ctx context.Context, code string) {
	if err := c.rdb.Set(ctx, roomClosedKey(code), 1, c.markerTTL).Err(); err != nil {
		log.WithError(err).WithField("code", code).Warn("Room closed marker write failed")
	}
	c.Invalidate(ctx, code)
}

// Invalidate drops the cached read model of a room
func (c *RedisRoomCache) Invalidate(ctx context.Context, code string) {
	if err := c.rdb.Del(ctx, roomCacheKey(code)).Err(); err != nil {
		log.WithError(err).WithField("code", code).Warn("Room cache invalidation failed")
	}
}

// Attach subscribes the cache to events that change a room's read model
func (c *RedisRoomCache) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventTypeWagerPlaced, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.WagerPlacedEvent); ok {
			c.Invalidate(ctx, e.RoomCode)
		}
	})
	bus.Subscribe(events.EventTypeRoomClosed, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.RoomClosedEvent); ok {
			c.MarkClosed(ctx, e.Code)
		}
	})
}
