package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dondesang/appdon/db"
	"github.com/dondesang/appdon/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const countriesKey = "appdon:countries"

// KV is the subset of the redis client the cache uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CountryCache serves the countries list from redis and falls back to the database.
// Redis failures are logged and never fail the request.
type CountryCache struct {
	next db.CountryReader
	kv   KV
	ttl  time.Duration
	log  *zap.Logger
}

func NewCountryCache(next db.CountryReader, kv KV, ttl time.Duration, log *zap.Logger) *CountryCache {
	return &CountryCache{next: next, kv: kv, ttl: ttl, log: log}
}

func (c *CountryCache) Countries(ctx context.Context) ([]models.Country, error) {
	raw, err := c.kv.Get(ctx, countriesKey).Bytes()
	switch {
	case err == nil:
		var cached []models.Country
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		c.log.Warn("discarding unreadable countries cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("countries cache read failed", zap.Error(err))
	}
	return c.Refresh(ctx)
}

// Refresh reads the database and overwrites the cached copy.
func (c *CountryCache) Refresh(ctx context.Context) ([]models.Country, error) {
	rows, err := c.next.Countries(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return rows, nil
	}
	if err := c.kv.Set(ctx, countriesKey, payload, c.ttl).Err(); err != nil {
		c.log.Warn("countries cache write failed", zap.Error(err))
	}
	return rows, nil
}
