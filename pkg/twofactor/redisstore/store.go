package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// DefaultKeyPrefix namespaces record keys.
const DefaultKeyPrefix = "twofactor:"

// Store keeps each record as a JSON string under prefix+userID.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ twofactor.Storage = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New wraps a connected client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(userID uuid.UUID) string {
	return s.prefix + userID.String()
}

func (s *Store) LoadState(ctx context.Context, userID uuid.UUID) (twofactor.State, error) {
	return load(ctx, s.client, s.key(userID))
}

func (s *Store) SaveState(ctx context.Context, userID uuid.UUID, state twofactor.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	return nil
}

// SwapBackupCodes uses WATCH/MULTI: if the key changes between the read and
// EXEC, the transaction aborts and the swap reports false.
func (s *Store) SwapBackupCodes(ctx context.Context, userID uuid.UUID, current, next []string) (bool, error) {
	key := s.key(userID)
	swapped := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		state, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		if !slices.Equal(state.BackupCodeHashes, current) {
			return nil
		}

		state.BackupCodeHashes = next
		data, err := encode(state)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		}); err != nil {
			return err
		}
		swapped = true
		return nil
	}, key)

	if err := watchResult(err); err != nil {
		return false, err
	}
	return swapped, nil
}

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// ActivateState enables a pending record holding secret, under WATCH like
// SwapBackupCodes.
func (s *Store) ActivateState(ctx context.Context, userID uuid.UUID, secret string) (bool, error) {
	key := s.key(userID)
	activated := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		state, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		if secret == "" || state.Enabled || state.Secret != secret {
			return nil
		}

		state.Enabled = true
		data, err := encode(state)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		}); err != nil {
			return err
		}
		activated = true
		return nil
	}, key)

	return activated, watchResult(err)
}

// watchResult maps the outcome of a WATCH transaction: an aborted EXEC is a
// lost race and not an error.
func watchResult(err error) error {
	switch {
	case err == nil, errors.Is(err, redis.TxFailedErr):
		return nil
	case errors.Is(err, twofactor.ErrRecordNotFound), errors.Is(err, ErrCorruptRecord):
		return err
	default:
		return errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
}

func load(ctx context.Context, c getter, key string) (twofactor.State, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return twofactor.State{}, twofactor.ErrRecordNotFound
	}
	if err != nil {
		return twofactor.State{}, err
	}

	var state twofactor.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return twofactor.State{}, errors.Join(ErrCorruptRecord, err)
	}
	state.BackupCodeHashes = twofactor.CloneHashes(state.BackupCodeHashes)
	return state, nil
}

func encode(state twofactor.State) ([]byte, error) {
	state.BackupCodeHashes = twofactor.CloneHashes(state.BackupCodeHashes)
	data, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	return data, nil
}
