package twofactor

import (
	"context"

	"github.com/google/uuid"
)

// Storage persists two-factor records. Implementations must map a missing
// record to ErrRecordNotFound and should wrap write failures with
// ErrStorageWriteFailed.
type Storage interface {
	// LoadState returns the record of the user.
	LoadState(ctx context.Context, userID uuid.UUID) (State, error)

	// SaveState creates or replaces the whole record.
	SaveState(ctx context.Context, userID uuid.UUID, state State) error

	// SwapBackupCodes replaces the stored backup-code hashes with next only if
	// they still equal current, element by element and in order. It reports
	// whether the write happened. This is the compare-and-remove primitive
	// that keeps a backup code from being accepted twice.
	SwapBackupCodes(ctx context.Context, userID uuid.UUID, current, next []string) (bool, error)

	// ActivateState sets Enabled only while the record is still pending with
	// exactly this (stored form of the) secret, and reports whether the write
	// happened. A Disable or a new Enable that landed after the caller's
	// LoadState therefore wins over a late confirmation.
	ActivateState(ctx context.Context, userID uuid.UUID, secret string) (bool, error)
}
