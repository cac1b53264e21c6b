package preferences

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisKV is the slice of the go-redis client the cache needs.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

// CachedProvider is a read-through cache in front of another Provider. Redis errors
// are logged and the request falls through to the wrapped provider. Missing
// preferences are not cached.
type CachedProvider struct {
	next   Provider
	rdb    RedisKV
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewCachedProvider(next Provider, rdb RedisKV, cfg CacheConfig, logger *slog.Logger) *CachedProvider {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "prefs"
	}
	return &CachedProvider{next: next, rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix, logger: logger}
}

type cachedPreference struct {
	UserID         string `json:"user_id"`
	WorkHoursStart string `json:"work_hours_start"`
	WorkHoursEnd   string `json:"work_hours_end"`
	WorkDays       []int  `json:"work_days"`
	SlotMinutes    int    `json:"slot_duration_minutes"`
	BufferMinutes  int    `json:"buffer_minutes"`
	Timezone       string `json:"timezone"`
}

func (c *CachedProvider) GetPreferences(ctx context.Context, userID string) (model.Preference, bool, error) {
	key := c.key(userID)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		pref, decodeErr := decodePreference(raw)
		if decodeErr == nil {
			return pref, true, nil
		}
		c.logger.Warn("preference cache decode failed", "key", key, "err", decodeErr)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("preference cache read failed", "key", key, "err", err)
	}

	pref, ok, err := c.next.GetPreferences(ctx, userID)
	if err != nil || !ok {
		return pref, ok, err
	}

	payload, err := encodePreference(pref)
	if err != nil {
		c.logger.Warn("preference cache encode failed", "key", key, "err", err)
		return pref, true, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("preference cache write failed", "key", key, "err", err)
	}
	return pref, true, nil
}

func (c *CachedProvider) key(userID string) string {
	return c.prefix + ":" + userID
}

func encodePreference(p model.Preference) ([]byte, error) {
	return json.Marshal(cachedPreference{
		UserID:         p.UserID,
		WorkHoursStart: model.FormatClock(p.WorkHoursStart),
		WorkHoursEnd:   model.FormatClock(p.WorkHoursEnd),
		WorkDays:       p.WorkDays,
		SlotMinutes:    int(p.SlotDuration / time.Minute),
		BufferMinutes:  int(p.BufferBetweenMeetings / time.Minute),
		Timezone:       p.Timezone,
	})
}

func decodePreference(raw []byte) (model.Preference, error) {
	var c cachedPreference
	if err := json.Unmarshal(raw, &c); err != nil {
		return model.Preference{}, err
	}
	start, err := model.ParseClock(c.WorkHoursStart)
	if err != nil {
		return model.Preference{}, err
	}
	end, err := model.ParseClock(c.WorkHoursEnd)
	if err != nil {
		return model.Preference{}, err
	}
	return model.Preference{
		UserID:                c.UserID,
		WorkHoursStart:        start,
		WorkHoursEnd:          end,
		WorkDays:              c.WorkDays,
		SlotDuration:          time.Duration(c.SlotMinutes) * time.Minute,
		BufferBetweenMeetings: time.Duration(c.BufferMinutes) * time.Minute,
		Timezone:              c.Timezone,
	}, nil
}
