package pgstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/pgstore"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/storagetest"
)

func TestStore(t *testing.T) {
	if os.Getenv("PG_CONN_URL") == "" {
		t.Skip("PG_CONN_URL is not set")
	}

	var cfg pgstore.Config
	require.NoError(t, config.Parse(&cfg, ""))

	ctx := context.Background()
	pool, err := pgstore.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pgstore.Migrate(ctx, pool, cfg, logger.Discard()))
	require.NoError(t, pgstore.Healthcheck(pool)(ctx))

	store := pgstore.New(pool)
	storagetest.Run(t, func(*testing.T) twofactor.Storage { return store })
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := pgstore.Connect(context.Background(), pgstore.Config{ConnectionString: "://bad"})
	require.ErrorIs(t, err, pgstore.ErrFailedToParseDBConfig)
}
