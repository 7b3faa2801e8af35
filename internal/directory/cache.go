package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	entryKeyPrefix = "directory:doctor:"
	userKeyPrefix  = "directory:user:"
)

type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedDirectory is a read-through Redis cache in front of another Directory.
// Misses and cache faults fall through to the wrapped directory; not-found
// results are never cached.
type CachedDirectory struct {
	next   Directory
	client cacheClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedDirectory wraps next with a Redis cache whose entries live for ttl.
func NewCachedDirectory(next Directory, client cacheClient, ttl time.Duration, logger zerolog.Logger) *CachedDirectory {
	return &CachedDirectory{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "directory_cache").Logger(),
	}
}

func (d *CachedDirectory) Lookup(ctx context.Context, doctorID string) (Entry, error) {
	key := entryKeyPrefix + doctorID
	raw, err := d.client.Get(ctx, key).Bytes()
	if err == nil {
		var e Entry
		if jsonErr := json.Unmarshal(raw, &e); jsonErr == nil {
			return e, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		d.logger.Warn().Err(err).Str("key", key).Msg("directory cache read failed")
	}

	e, err := d.next.Lookup(ctx, doctorID)
	if err != nil {
		return Entry{}, err
	}
	if payload, err := json.Marshal(e); err == nil {
		d.store(ctx, key, payload)
	}
	return e, nil
}

func (d *CachedDirectory) DoctorIDForUser(ctx context.Context, userID string) (string, error) {
	key := userKeyPrefix + userID
	id, err := d.client.Get(ctx, key).Result()
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		d.logger.Warn().Err(err).Str("key", key).Msg("directory cache read failed")
	}

	id, err = d.next.DoctorIDForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	d.store(ctx, key, id)
	return id, nil
}

func (d *CachedDirectory) store(ctx context.Context, key string, value interface{}) {
	if err := d.client.Set(ctx, key, value, d.ttl).Err(); err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("directory cache write failed")
	}
}
