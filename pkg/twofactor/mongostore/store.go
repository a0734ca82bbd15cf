package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Store keeps one document per user, keyed by the string form of the user ID.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ twofactor.Storage = (*Store)(nil)

// New wraps a collection, see Collection.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll, now: time.Now}
}

func (s *Store) LoadState(ctx context.Context, userID uuid.UUID) (twofactor.State, error) {
	var state twofactor.State
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID.String()}}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return twofactor.State{}, twofactor.ErrRecordNotFound
	}
	if err != nil {
		return twofactor.State{}, err
	}
	state.BackupCodeHashes = twofactor.CloneHashes(state.BackupCodeHashes)
	return state, nil
}

// SaveState upserts every field explicitly so an empty secret overwrites
// the stored one.
func (s *Store) SaveState(ctx context.Context, userID uuid.UUID, state twofactor.State) error {
	if err := state.Validate(); err != nil {
		return err
	}

	now := s.now().UTC()
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "secret", Value: state.Secret},
			{Key: "enabled", Value: state.Enabled},
			{Key: "backup_code_hashes", Value: twofactor.CloneHashes(state.BackupCodeHashes)},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "created_at", Value: now},
		}},
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID.String()}},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	return nil
}

// SwapBackupCodes filters on the exact current array; a document whose list
// changed in the meantime does not match and nothing is written.
func (s *Store) SwapBackupCodes(ctx context.Context, userID uuid.UUID, current, next []string) (bool, error) {
	id := userID.String()
	res, err := s.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "backup_code_hashes", Value: twofactor.CloneHashes(current)},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "backup_code_hashes", Value: twofactor.CloneHashes(next)},
			{Key: "updated_at", Value: s.now().UTC()},
		}}},
	)
	if err != nil {
		return false, errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	return false, s.missing(ctx, id)
}

// ActivateState flips enabled only on a pending document holding secret.
func (s *Store) ActivateState(ctx context.Context, userID uuid.UUID, secret string) (bool, error) {
	id := userID.String()
	if secret == "" {
		return false, s.missing(ctx, id)
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "secret", Value: secret},
			{Key: "enabled", Value: false},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "enabled", Value: true},
			{Key: "updated_at", Value: s.now().UTC()},
		}}},
	)
	if err != nil {
		return false, errors.Join(twofactor.ErrStorageWriteFailed, err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	return false, s.missing(ctx, id)
}

func (s *Store) missing(ctx context.Context, id string) error {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if n == 0 {
		return twofactor.ErrRecordNotFound
	}
	return nil
}
