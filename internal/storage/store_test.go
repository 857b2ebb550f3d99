package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"memory": NewMemory(time.Minute),
		"redis":  NewRedisFromClient(client, "test:"),
	}
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "session:1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "session:1", "token", 0))
			v, err := s.Get(ctx, "session:1")
			require.NoError(t, err)
			assert.Equal(t, "token", v)

			require.NoError(t, s.Remove(ctx, "session:1"))
			_, err = s.Get(ctx, "session:1")
			assert.ErrorIs(t, err, ErrNotFound)

			// removing a missing key is not an error
			assert.NoError(t, s.Remove(ctx, "session:1"))
			assert.NoError(t, s.Ping(ctx))
		})
	}
}

func TestStore_JSONHelpers(t *testing.T) {
	ctx := context.Background()
	type entry struct {
		Label string `json:"label"`
	}
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, SetJSON(ctx, s, "k", []entry{{Label: "home"}}, time.Hour))

			var got []entry
			require.NoError(t, GetJSON(ctx, s, "k", &got))
			assert.Equal(t, []entry{{Label: "home"}}, got)
		})
	}
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisFromClient(client, "admin:")
	require.NoError(t, s.Set(ctx, "session:abc", "v", time.Minute))
	assert.True(t, mr.Exists("admin:session:abc"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}
