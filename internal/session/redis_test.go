package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	n := int64(0)
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func TestRedisStore(t *testing.T) {
	fake := newFakeRedis()
	store := Scope(NewRedisStore(fake, 0), "c1")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyToken, "tok"))
	assert.Equal(t, "tok", fake.data["welog:c1:token"])
	assert.Equal(t, DefaultRedisTTL, fake.ttls["welog:c1:token"])

	v, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, store.Delete(ctx, KeyToken))
	assert.Empty(t, fake.data)
}

func TestRedisStore_Errors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := NewRedisStore(fake, time.Hour)

	_, _, err := store.Get(context.Background(), "c1", KeyUser)
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, store.Set(context.Background(), "c1", KeyUser, "{}"))
	assert.Error(t, store.Delete(context.Background(), "c1", KeyUser))
}

type fakeRepo struct {
	rows map[string]string
}

func (f *fakeRepo) Get(ctx context.Context, clientID, key string) (string, error) {
	v, ok := f.rows[clientID+"/"+key]
	if !ok {
		return "", ErrStateNotFound
	}
	return v, nil
}

func (f *fakeRepo) Upsert(ctx context.Context, clientID, key, value string) error {
	f.rows[clientID+"/"+key] = value
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, clientID, key string) error {
	delete(f.rows, clientID+"/"+key)
	return nil
}

func (f *fakeRepo) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func TestRepoStore(t *testing.T) {
	repo := &fakeRepo{rows: map[string]string{}}
	store := Scope(NewRepoStore(repo), "c1")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, KeyPostDraft)
	require.NoError(t, err)
	assert.False(t, ok, "missing rows are a miss, not an error")

	require.NoError(t, store.Set(ctx, KeyPostDraft, `{"title":"x"}`))
	v, ok, err := store.Get(ctx, KeyPostDraft)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"title":"x"}`, v)

	require.NoError(t, store.Delete(ctx, KeyPostDraft))
	assert.Empty(t, repo.rows)
}
