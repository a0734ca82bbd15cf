package twofactor_test

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/memstore"
)

// mockStorage is a testify mock of twofactor.Storage
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) LoadState(ctx context.Context, userID uuid.UUID) (twofactor.State, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(twofactor.State), args.Error(1)
}

func (m *mockStorage) SaveState(ctx context.Context, userID uuid.UUID, state twofactor.State) error {
	args := m.Called(ctx, userID, state)
	return args.Error(0)
}

func (m *mockStorage) SwapBackupCodes(ctx context.Context, userID uuid.UUID, current, next []string) (bool, error) {
	args := m.Called(ctx, userID, current, next)
	return args.Bool(0), args.Error(1)
}

func (m *mockStorage) ActivateState(ctx context.Context, userID uuid.UUID, secret string) (bool, error) {
	args := m.Called(ctx, userID, secret)
	return args.Bool(0), args.Error(1)
}

// racingStorage runs afterLoad once, right after the first LoadState has read
// the record, to simulate a writer landing between read and write.
type racingStorage struct {
	*memstore.Store
	afterLoad func()
	fired     atomic.Bool
}

func (r *racingStorage) LoadState(ctx context.Context, userID uuid.UUID) (twofactor.State, error) {
	state, err := r.Store.LoadState(ctx, userID)
	if r.afterLoad != nil && r.fired.CompareAndSwap(false, true) {
		r.afterLoad()
	}
	return state, err
}
