package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CalendarCache stores computed month calendars. Get returns a slot to pass
// to Set, so a calendar computed before an Invalidate is never stored as
// current. Invalidate drops every month of the vehicle.
type CalendarCache interface {
	Get(ctx context.Context, vehicleID uint, year, month int) (cal *MonthCalendar, slot string, ok bool, err error)
	Set(ctx context.Context, slot string, cal *MonthCalendar) error
	Invalidate(ctx context.Context, vehicleID uint) error
}

type noCache struct{}

func (noCache) Get(context.Context, uint, int, int) (*MonthCalendar, string, bool, error) {
	return nil, "", false, nil
}
func (noCache) Set(context.Context, string, *MonthCalendar) error { return nil }
func (noCache) Invalidate(context.Context, uint) error            { return nil }

// RedisCalendarCache keys months under a per-vehicle generation counter.
// Invalidate bumps the generation; orphaned months expire with the TTL.
type RedisCalendarCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCalendarCache(client *redis.Client, ttl time.Duration) *RedisCalendarCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCalendarCache{client: client, ttl: ttl}
}

func generationKey(vehicleID uint) string {
	return fmt.Sprintf("calendar:%d:gen", vehicleID)
}

func (c *RedisCalendarCache) monthKey(ctx context.Context, vehicleID uint, year, month int) (string, error) {
	gen, err := c.client.Get(ctx, generationKey(vehicleID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("calendar:%d:%d:%04d-%02d", vehicleID, gen, year, month), nil
}

func (c *RedisCalendarCache) Get(ctx context.Context, vehicleID uint, year, month int) (*MonthCalendar, string, bool, error) {
	key, err := c.monthKey(ctx, vehicleID, year, month)
	if err != nil {
		return nil, "", false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, key, false, nil
	}
	if err != nil {
		return nil, "", false, err
	}
	var cal MonthCalendar
	if err := json.Unmarshal(raw, &cal); err != nil {
		return nil, key, false, err
	}
	return &cal, key, true, nil
}

func (c *RedisCalendarCache) Set(ctx context.Context, key string, cal *MonthCalendar) error {
	if key == "" {
		return nil
	}
	raw, err := json.Marshal(cal)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

func (c *RedisCalendarCache) Invalidate(ctx context.Context, vehicleID uint) error {
	return c.client.Incr(ctx, generationKey(vehicleID)).Err()
}
