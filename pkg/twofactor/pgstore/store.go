package pgstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

const (
	loadStateQuery = `
SELECT secret, enabled, backup_code_hashes
FROM two_factor_states
WHERE user_id = $1`

	saveStateQuery = `
INSERT INTO two_factor_states (user_id, secret, enabled, backup_code_hashes)
VALUES ($1, $2, $3, $4::text[])
ON CONFLICT (user_id) DO UPDATE SET
    secret = EXCLUDED.secret,
    enabled = EXCLUDED.enabled,
    backup_code_hashes = EXCLUDED.backup_code_hashes,
    updated_at = now()`

	// The WHERE clause compares the whole array, element order included,
	// which makes this a single-statement compare-and-swap.
	swapBackupCodesQuery = `
UPDATE two_factor_states
SET backup_code_hashes = $3::text[], updated_at = now()
WHERE user_id = $1 AND backup_code_hashes = $2::text[]`

	activateStateQuery = `
UPDATE two_factor_states
SET enabled = TRUE, updated_at = now()
WHERE user_id = $1 AND secret = $2 AND secret <> '' AND NOT enabled`

	existsQuery = `SELECT EXISTS (SELECT 1 FROM two_factor_states WHERE user_id = $1)`
)

// Store is a twofactor.Storage backed by the two_factor_states table.
// Run Migrate before first use.
type Store struct {
	pool *pgxpool.Pool
}

var _ twofactor.Storage = (*Store)(nil)

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) LoadState(ctx context.Context, userID uuid.UUID) (twofactor.State, error) {
	var state twofactor.State
	err := s.pool.QueryRow(ctx, loadStateQuery, userID).
		Scan(&state.Secret, &state.Enabled, &state.BackupCodeHashes)
	if isNotFound(err) {
		return twofactor.State{}, twofactor.ErrRecordNotFound
	}
	if err != nil {
		return twofactor.State{}, err
	}
	state.BackupCodeHashes = twofactor.CloneHashes(state.BackupCodeHashes)
	return state, nil
}

func (s *Store) SaveState(ctx context.Context, userID uuid.UUID, state twofactor.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, saveStateQuery,
		userID, state.Secret, state.Enabled, twofactor.CloneHashes(state.BackupCodeHashes))
	if err != nil {
		return errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	return nil
}

func (s *Store) SwapBackupCodes(ctx context.Context, userID uuid.UUID, current, next []string) (bool, error) {
	tag, err := s.pool.Exec(ctx, swapBackupCodesQuery,
		userID, twofactor.CloneHashes(current), twofactor.CloneHashes(next))
	if err != nil {
		return false, errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	return false, s.missing(ctx, userID)
}

func (s *Store) ActivateState(ctx context.Context, userID uuid.UUID, secret string) (bool, error) {
	tag, err := s.pool.Exec(ctx, activateStateQuery, userID, secret)
	if err != nil {
		return false, errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	return false, s.missing(ctx, userID)
}

// missing explains a conditional write that touched no row: ErrRecordNotFound
// if there is no record, nil if the condition simply did not hold.
func (s *Store) missing(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, existsQuery, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return twofactor.ErrRecordNotFound
	}
	return nil
}
