package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfeed/internal/config"
)

func TestNewAppliesConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	client, err := New(context.Background(), config.RedisConfig{
		Addr:           mr.Addr(),
		Password:       "secret",
		DB:             2,
		PoolSize:       3,
		DialTimeoutMS:  500,
		ReadTimeoutMS:  250,
		WriteTimeoutMS: 250,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, 3, opts.PoolSize)
	assert.Equal(t, 2, opts.DB)

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.Select(2)
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewFailsOnBadPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	_, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr(), Password: "wrong", DialTimeoutMS: 500})
	assert.Error(t, err)
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.RedisConfig{Addr: addr, DialTimeoutMS: 200})
	assert.Error(t, err)
}
