package mongostore_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/mongostore"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/storagetest"
)

func TestStore(t *testing.T) {
	if os.Getenv("MONGODB_URL") == "" {
		t.Skip("MONGODB_URL is not set")
	}

	var cfg mongostore.Config
	require.NoError(t, config.Parse(&cfg, ""))
	cfg.Collection = "two_factor_states_test"

	ctx := context.Background()
	client, err := mongostore.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	require.NoError(t, mongostore.Healthcheck(client)(ctx))

	coll := mongostore.Collection(client, cfg)
	t.Cleanup(func() { _ = coll.Drop(context.Background()) })

	store := mongostore.New(coll)
	storagetest.Run(t, func(*testing.T) twofactor.Storage { return store })
}
