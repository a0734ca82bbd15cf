// Package memstore is an in-memory twofactor.Storage for tests and
// single-process deployments.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Store keeps records in a map guarded by a mutex. The zero value is not
// usable; call New.
type Store struct {
	mu      sync.RWMutex
	records map[uuid.UUID]twofactor.State
}

var _ twofactor.Storage = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[uuid.UUID]twofactor.State)}
}

// LoadState returns a deep copy of the stored record.
func (s *Store) LoadState(_ context.Context, userID uuid.UUID) (twofactor.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.records[userID]
	if !ok {
		return twofactor.State{}, twofactor.ErrRecordNotFound
	}
	return state.Clone(), nil
}

// SaveState stores a deep copy of state.
func (s *Store) SaveState(_ context.Context, userID uuid.UUID, state twofactor.State) error {
	if err := state.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[userID] = state.Clone()
	return nil
}

// SwapBackupCodes replaces the hash list if it still equals current.
func (s *Store) SwapBackupCodes(_ context.Context, userID uuid.UUID, current, next []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.records[userID]
	if !ok {
		return false, twofactor.ErrRecordNotFound
	}
	if !slices.Equal(state.BackupCodeHashes, current) {
		return false, nil
	}

	state.BackupCodeHashes = twofactor.CloneHashes(next)
	s.records[userID] = state
	return true, nil
}

// ActivateState enables the record if it is pending with the given secret.
func (s *Store) ActivateState(_ context.Context, userID uuid.UUID, secret string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.records[userID]
	if !ok {
		return false, twofactor.ErrRecordNotFound
	}
	if secret == "" || state.Enabled || state.Secret != secret {
		return false, nil
	}

	state.Enabled = true
	s.records[userID] = state
	return true, nil
}

// Delete removes the record of the user, if any.
func (s *Store) Delete(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
