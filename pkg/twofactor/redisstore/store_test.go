package redisstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/redisstore"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/storagetest"
)

func TestStore(t *testing.T) {
	if os.Getenv("REDIS_URL") == "" {
		t.Skip("REDIS_URL is not set")
	}

	var cfg redisstore.Config
	require.NoError(t, config.Parse(&cfg, ""))

	ctx := context.Background()
	client, err := redisstore.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, redisstore.Healthcheck(client)(ctx))

	store := redisstore.New(client, redisstore.WithKeyPrefix("twofactor-test:"))
	storagetest.Run(t, func(*testing.T) twofactor.Storage { return store })

	t.Run("corrupt record", func(t *testing.T) {
		id := uuid.New()
		key := "twofactor-test:" + id.String()
		require.NoError(t, client.Set(ctx, key, "not json", 0).Err())
		t.Cleanup(func() { client.Del(ctx, key) })

		_, err := store.LoadState(ctx, id)
		assert.ErrorIs(t, err, redisstore.ErrCorruptRecord)
	})
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redisstore.Connect(context.Background(), redisstore.Config{ConnectionURL: "http://localhost"})
	assert.ErrorIs(t, err, redisstore.ErrFailedToParseRedisConnString)
}
