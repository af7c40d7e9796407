package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisKVFromClient(client), mr
}

func TestRedisKV_GetMissingKey(t *testing.T) {
	kv, _ := setupTestKV(t)

	_, err := kv.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisKV_SetGetRoundTrip(t *testing.T) {
	kv, _ := setupTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v"))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestRedisKV_Exists(t *testing.T) {
	kv, _ := setupTestKV(t)
	ctx := context.Background()

	exists, err := kv.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, kv.Set(ctx, "k", "v"))

	exists, err = kv.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisKV_Delete(t *testing.T) {
	kv, _ := setupTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v"))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestGetJSON(t *testing.T) {
	kv, mr := setupTestKV(t)
	ctx := context.Background()

	t.Run("missing key reads as absent", func(t *testing.T) {
		var dest map[string]int
		found, err := GetJSON(ctx, kv, "missing", &dest)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("valid blob round-trips", func(t *testing.T) {
		require.NoError(t, SetJSON(ctx, kv, "obj", map[string]int{"a": 1}))

		var dest map[string]int
		found, err := GetJSON(ctx, kv, "obj", &dest)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 1, dest["a"])
	})

	t.Run("corrupt blob reads as absent, not an error", func(t *testing.T) {
		mr.Set("corrupt", "{not json")

		var dest map[string]int
		found, err := GetJSON(ctx, kv, "corrupt", &dest)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
