// Package storagetest holds the behaviour every twofactor.Storage
// implementation must show. Adapter tests call Run with a factory.
package storagetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Factory returns a ready, empty-enough store. User IDs are random, so a
// shared backend is fine.
type Factory func(t *testing.T) twofactor.Storage

// Run executes the storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("load missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.LoadState(context.Background(), uuid.New())
		assert.ErrorIs(t, err, twofactor.ErrRecordNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()

		want := twofactor.State{
			Secret:           "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
			BackupCodeHashes: []string{"h1", "h2", "h3"},
		}
		require.NoError(t, s.SaveState(ctx, id, want))

		got, err := s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		want.Enabled = true
		want.BackupCodeHashes = []string{"h2"}
		require.NoError(t, s.SaveState(ctx, id, want))

		got, err = s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("empty record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()

		require.NoError(t, s.SaveState(ctx, id, twofactor.State{}))

		got, err := s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, twofactor.StatusUnset, got.Status())
		assert.Empty(t, got.BackupCodeHashes)
	})

	t.Run("swap", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()

		require.NoError(t, s.SaveState(ctx, id, twofactor.State{
			Secret:           "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
			Enabled:          true,
			BackupCodeHashes: []string{"a", "b", "c"},
		}))

		ok, err := s.SwapBackupCodes(ctx, id, []string{"a", "b"}, []string{"b"})
		require.NoError(t, err)
		assert.False(t, ok, "stale current must not match")

		ok, err = s.SwapBackupCodes(ctx, id, []string{"a", "b", "c"}, []string{"a", "c"})
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, got.BackupCodeHashes)
		assert.True(t, got.Enabled)
		assert.Equal(t, "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", got.Secret)

		ok, err = s.SwapBackupCodes(ctx, id, []string{"a", "c"}, []string{})
		require.NoError(t, err)
		assert.True(t, ok)

		got, err = s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got.BackupCodeHashes)
	})

	t.Run("swap missing", func(t *testing.T) {
		s := newStore(t)
		ok, err := s.SwapBackupCodes(context.Background(), uuid.New(), []string{"a"}, []string{})
		assert.ErrorIs(t, err, twofactor.ErrRecordNotFound)
		assert.False(t, ok)
	})

	t.Run("activate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()
		const secret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

		require.NoError(t, s.SaveState(ctx, id, twofactor.State{
			Secret:           secret,
			BackupCodeHashes: []string{"a", "b"},
		}))

		ok, err := s.ActivateState(ctx, id, "JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		assert.False(t, ok, "other secret must not activate")

		ok, err = s.ActivateState(ctx, id, secret)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, twofactor.State{Secret: secret, Enabled: true, BackupCodeHashes: []string{"a", "b"}}, got)

		ok, err = s.ActivateState(ctx, id, secret)
		require.NoError(t, err)
		assert.False(t, ok, "already active")
	})

	t.Run("activate after disable", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()
		const secret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

		require.NoError(t, s.SaveState(ctx, id, twofactor.State{Secret: secret, BackupCodeHashes: []string{"a"}}))
		require.NoError(t, s.SaveState(ctx, id, twofactor.State{}))

		ok, err := s.ActivateState(ctx, id, secret)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.ActivateState(ctx, id, "")
		require.NoError(t, err)
		assert.False(t, ok, "empty secret never activates")

		got, err := s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, twofactor.StatusUnset, got.Status())
	})

	t.Run("activate missing", func(t *testing.T) {
		s := newStore(t)
		ok, err := s.ActivateState(context.Background(), uuid.New(), "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ")
		assert.ErrorIs(t, err, twofactor.ErrRecordNotFound)
		assert.False(t, ok)
	})

	t.Run("concurrent swap has one winner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()

		current := []string{"a", "b", "c"}
		require.NoError(t, s.SaveState(ctx, id, twofactor.State{
			Secret:           "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
			Enabled:          true,
			BackupCodeHashes: current,
		}))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.SwapBackupCodes(ctx, id, current, []string{"b", "c"})
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})
}
