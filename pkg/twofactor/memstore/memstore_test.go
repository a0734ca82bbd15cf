package memstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/memstore"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/storagetest"
)

func TestStore_LoadState(t *testing.T) {
	t.Parallel()

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		_, err := s.LoadState(context.Background(), uuid.New())
		assert.ErrorIs(t, err, twofactor.ErrRecordNotFound)
	})

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		id := uuid.New()
		require.NoError(t, s.SaveState(context.Background(), id, twofactor.State{
			Secret:           "JBSWY3DPEHPK3PXP",
			BackupCodeHashes: []string{"a", "b"},
		}))

		got, err := s.LoadState(context.Background(), id)
		require.NoError(t, err)
		got.BackupCodeHashes[0] = "mutated"

		again, err := s.LoadState(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, again.BackupCodeHashes)
	})
}

func TestStore_SaveState(t *testing.T) {
	t.Parallel()

	t.Run("rejects enabled without secret", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		err := s.SaveState(context.Background(), uuid.New(), twofactor.State{Enabled: true})
		assert.ErrorIs(t, err, twofactor.ErrInvalidState)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("nil hashes stored as empty", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		id := uuid.New()
		require.NoError(t, s.SaveState(context.Background(), id, twofactor.State{}))

		got, err := s.LoadState(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, got.BackupCodeHashes)
		assert.Empty(t, got.BackupCodeHashes)
	})

	t.Run("overwrites", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		id := uuid.New()
		ctx := context.Background()
		require.NoError(t, s.SaveState(ctx, id, twofactor.State{Secret: "A"}))
		require.NoError(t, s.SaveState(ctx, id, twofactor.State{Secret: "B", Enabled: true}))

		got, err := s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", got.Secret)
		assert.True(t, got.Enabled)
		assert.Equal(t, 1, s.Len())
	})
}

func TestStore_SwapBackupCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		ok, err := s.SwapBackupCodes(ctx, uuid.New(), nil, nil)
		assert.ErrorIs(t, err, twofactor.ErrRecordNotFound)
		assert.False(t, ok)
	})

	t.Run("matching current", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		id := uuid.New()
		require.NoError(t, s.SaveState(ctx, id, twofactor.State{Secret: "A", BackupCodeHashes: []string{"a", "b"}}))

		ok, err := s.SwapBackupCodes(ctx, id, []string{"a", "b"}, []string{"b"})
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.LoadState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, got.BackupCodeHashes)
		assert.Equal(t, "A", got.Secret)
	})

	t.Run("stale current", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		id := uuid.New()
		require.NoError(t, s.SaveState(ctx, id, twofactor.State{Secret: "A", BackupCodeHashes: []string{"b"}}))

		ok, err := s.SwapBackupCodes(ctx, id, []string{"a", "b"}, []string{"b"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("single winner", func(t *testing.T) {
		t.Parallel()
		s := memstore.New()
		id := uuid.New()
		require.NoError(t, s.SaveState(ctx, id, twofactor.State{Secret: "A", BackupCodeHashes: []string{"a", "b"}}))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.SwapBackupCodes(ctx, id, []string{"a", "b"}, []string{"b"})
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	s := memstore.New()
	id := uuid.New()
	require.NoError(t, s.SaveState(context.Background(), id, twofactor.State{Secret: "A"}))
	s.Delete(id)

	_, err := s.LoadState(context.Background(), id)
	assert.ErrorIs(t, err, twofactor.ErrRecordNotFound)
}

func TestStore_Contract(t *testing.T) {
	t.Parallel()
	storagetest.Run(t, func(*testing.T) twofactor.Storage { return memstore.New() })
}
