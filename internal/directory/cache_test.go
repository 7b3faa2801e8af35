package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	values  map[string]string
	failGet bool
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.sets++
	switch v := value.(type) {
	case string:
		f.values[key] = v
	case []byte:
		f.values[key] = string(v)
	}
	return redis.NewStatusResult("OK", nil)
}

type countingDirectory struct {
	Directory
	lookups int
	users   int
}

func (c *countingDirectory) Lookup(ctx context.Context, doctorID string) (Entry, error) {
	c.lookups++
	return c.Directory.Lookup(ctx, doctorID)
}

func (c *countingDirectory) DoctorIDForUser(ctx context.Context, userID string) (string, error) {
	c.users++
	return c.Directory.DoctorIDForUser(ctx, userID)
}

func TestCachedDirectory_ReadThrough(t *testing.T) {
	next := &countingDirectory{Directory: NewFileDirectory(Entry{DoctorID: "doc-1", UserID: "user-1", IsApproved: true})}
	cache := newFakeCache()
	dir := NewCachedDirectory(next, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, err := dir.Lookup(ctx, "doc-1")
		require.NoError(t, err)
		assert.True(t, e.IsApproved)

		id, err := dir.DoctorIDForUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", id)
	}
	assert.Equal(t, 1, next.lookups)
	assert.Equal(t, 1, next.users)
}

func TestCachedDirectory_NotFoundIsNotCached(t *testing.T) {
	next := &countingDirectory{Directory: NewFileDirectory()}
	cache := newFakeCache()
	dir := NewCachedDirectory(next, cache, time.Minute, zerolog.Nop())

	_, err := dir.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = dir.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, next.lookups)
	assert.Zero(t, cache.sets)
}

func TestCachedDirectory_CacheFaultFallsThrough(t *testing.T) {
	next := &countingDirectory{Directory: NewFileDirectory(Entry{DoctorID: "doc-1", IsApproved: true})}
	cache := newFakeCache()
	cache.failGet = true
	dir := NewCachedDirectory(next, cache, time.Minute, zerolog.Nop())

	e, err := dir.Lookup(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", e.DoctorID)
	assert.Equal(t, 1, next.lookups)
}
