package twofactor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/qrcode"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

const (
	methodTOTP       = "totp"
	methodBackupCode = "backup_code"
)

// Enrollment is returned once by Enable. Plaintext backup codes and the
// secret are not retrievable afterwards.
type Enrollment struct {
	Secret      string   // Base32 secret for manual entry
	URI         string   // otpauth:// provisioning URI
	QRCode      string   // data:image/png;base64 rendering of URI, empty if disabled
	BackupCodes []string // plaintext XXXX-XXXX codes
}

// Service drives the two-factor lifecycle of users.
type Service interface {
	// Enable issues a fresh secret and backup codes and leaves the user in
	// StatusPending until VerifySetup succeeds.
	Enable(ctx context.Context, userID uuid.UUID, accountName string) (*Enrollment, error)
	// VerifySetup checks a code against the issued secret and activates
	// two-factor authentication on success. If the setup was disabled or
	// re-enrolled meanwhile, it returns false and leaves the record alone.
	VerifySetup(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	// VerifyLogin accepts a TOTP code or an unused backup code. It returns
	// false, without error, unless the user is in StatusActive; a missing
	// record counts as StatusUnset.
	VerifyLogin(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	// Disable clears the secret and all backup codes.
	Disable(ctx context.Context, userID uuid.UUID) error
	// RegenerateBackupCodes replaces the whole backup code set.
	RegenerateBackupCodes(ctx context.Context, userID uuid.UUID) ([]string, error)
	// Status reports the lifecycle status; a missing record is StatusUnset.
	Status(ctx context.Context, userID uuid.UUID) (Status, error)
}

type service struct {
	storage         Storage
	issuer          string
	logger          *slog.Logger
	now             func() time.Time
	window          int
	qrSize          int
	strict          bool
	maxSwapAttempts int
	encryptionKey   []byte
	backupCodeOpts  []totp.BackupCodeOption
	backupCodes     *totp.BackupCodeGenerator
}

// New creates the two-factor service on top of storage.
func New(storage Storage, issuer string, opts ...Option) (Service, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if issuer == "" {
		return nil, ErrMissingIssuer
	}

	s := &service{
		storage:         storage,
		issuer:          issuer,
		logger:          logger.Discard(),
		now:             time.Now,
		window:          totp.DefaultWindow,
		qrSize:          qrcode.DefaultSize,
		maxSwapAttempts: 3,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.encryptionKey != nil && len(s.encryptionKey) != totp.AESKeySize {
		return nil, totp.ErrInvalidEncryptionKeyLength
	}

	gen, err := totp.NewBackupCodeGenerator(s.backupCodeOpts...)
	if err != nil {
		return nil, err
	}
	s.backupCodes = gen
	s.logger = s.logger.With(logger.Component("twofactor"))

	return s, nil
}

func (s *service) Enable(ctx context.Context, userID uuid.UUID, accountName string) (*Enrollment, error) {
	from := StatusUnset
	current, err := s.storage.LoadState(ctx, userID)
	switch {
	case err == nil:
		from = current.Status()
	case !errors.Is(err, ErrRecordNotFound):
		return nil, err
	}

	if s.strict && from == StatusActive {
		return nil, ErrAlreadyEnabled
	}
	if _, err := Transition(from, EventEnable); err != nil {
		return nil, err
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, err
	}
	uri, err := totp.GetTOTPURI(totp.TOTPParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      s.issuer,
	})
	if err != nil {
		return nil, err
	}
	codes, err := s.backupCodes.Generate()
	if err != nil {
		return nil, err
	}

	var qr string
	if s.qrSize > 0 {
		if qr, err = qrcode.DataURI(uri, qrcode.WithSize(s.qrSize)); err != nil {
			return nil, err
		}
	}

	stored, err := s.sealSecret(userID, secret)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveState(ctx, userID, State{
		Secret:           stored,
		Enabled:          false,
		BackupCodeHashes: totp.HashBackupCodes(codes),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to save two-factor enrollment",
			logger.UserID(userID.String()),
			logger.Error(err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "two-factor enrollment started",
		logger.UserID(userID.String()),
		logger.Event(string(EventEnable)),
		logger.Status(from),
	)

	return &Enrollment{
		Secret:      secret,
		URI:         uri,
		QRCode:      qr,
		BackupCodes: codes,
	}, nil
}

func (s *service) VerifySetup(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	stored, err := s.storage.LoadState(ctx, userID)
	if err != nil {
		return false, err
	}

	from := stored.Status()
	if from == StatusUnset {
		return false, ErrSecretNotConfigured
	}
	if _, err := Transition(from, EventConfirm); err != nil {
		return false, err
	}

	ok, err := s.checkTOTP(userID, stored.Secret, code)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.WarnContext(ctx, "invalid two-factor setup code",
			logger.UserID(userID.String()),
			logger.Status(from),
		)
		return false, nil
	}

	if from == StatusActive {
		return true, nil
	}

	activated, err := s.storage.ActivateState(ctx, userID, stored.Secret)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to activate two-factor authentication",
			logger.UserID(userID.String()),
			logger.Error(err),
		)
		return false, err
	}
	if !activated {
		s.logger.WarnContext(ctx, "two-factor setup changed during confirmation",
			logger.UserID(userID.String()),
		)
		return false, nil
	}

	s.logger.InfoContext(ctx, "two-factor authentication enabled",
		logger.UserID(userID.String()),
		logger.Event(string(EventConfirm)),
	)
	return true, nil
}

func (s *service) VerifyLogin(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	stored, err := s.storage.LoadState(ctx, userID)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if status := stored.Status(); status != StatusActive {
		s.logger.DebugContext(ctx, "two-factor login check on inactive setup",
			logger.UserID(userID.String()),
			logger.Status(status),
		)
		return false, nil
	}

	ok, err := s.checkTOTP(userID, stored.Secret, code)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.InfoContext(ctx, "two-factor login verified",
			logger.UserID(userID.String()),
			logger.Method(methodTOTP),
		)
		return true, nil
	}

	ok, remaining, err := s.consumeBackupCode(ctx, userID, stored.BackupCodeHashes, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to consume backup code",
			logger.UserID(userID.String()),
			logger.Error(err),
		)
		return false, err
	}
	if !ok {
		s.logger.WarnContext(ctx, "two-factor login rejected",
			logger.UserID(userID.String()),
		)
		return false, nil
	}

	s.logger.InfoContext(ctx, "two-factor login verified",
		logger.UserID(userID.String()),
		logger.Method(methodBackupCode),
		logger.Remaining(remaining),
	)
	return true, nil
}

// consumeBackupCode removes the hash matching code with a compare-and-swap.
// When another writer changed the list first, the fresh list is re-checked:
// the code may have been used in the meantime, in which case it is rejected.
func (s *service) consumeBackupCode(ctx context.Context, userID uuid.UUID, hashes []string, code string) (bool, int, error) {
	for attempt := 1; ; attempt++ {
		matched, remaining := totp.ConsumeBackupCode(hashes, code)
		if !matched {
			return false, len(hashes), nil
		}

		swapped, err := s.storage.SwapBackupCodes(ctx, userID, hashes, remaining)
		if err != nil {
			return false, 0, err
		}
		if swapped {
			return true, len(remaining), nil
		}
		if attempt >= s.maxSwapAttempts {
			return false, 0, ErrConcurrentUpdate
		}

		s.logger.DebugContext(ctx, "backup code swap lost a race, reloading",
			logger.UserID(userID.String()),
			logger.Attempt(attempt),
		)

		fresh, err := s.storage.LoadState(ctx, userID)
		if err != nil {
			return false, 0, err
		}
		if fresh.Status() != StatusActive {
			return false, 0, nil
		}
		hashes = fresh.BackupCodeHashes
	}
}

func (s *service) Disable(ctx context.Context, userID uuid.UUID) error {
	stored, err := s.storage.LoadState(ctx, userID)
	if err != nil {
		return err
	}

	from := stored.Status()
	if s.strict && from == StatusUnset {
		return ErrAlreadyDisabled
	}
	if _, err := Transition(from, EventDisable); err != nil {
		return err
	}

	if err := s.storage.SaveState(ctx, userID, State{BackupCodeHashes: []string{}}); err != nil {
		s.logger.ErrorContext(ctx, "failed to disable two-factor authentication",
			logger.UserID(userID.String()),
			logger.Error(err),
		)
		return err
	}

	s.logger.InfoContext(ctx, "two-factor authentication disabled",
		logger.UserID(userID.String()),
		logger.Event(string(EventDisable)),
		logger.Status(from),
	)
	return nil
}

func (s *service) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	stored, err := s.storage.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	codes, err := s.backupCodes.Generate()
	if err != nil {
		return nil, err
	}
	next := totp.HashBackupCodes(codes)

	for attempt := 1; ; attempt++ {
		if _, err := Transition(stored.Status(), EventRotate); err != nil {
			return nil, errors.Join(ErrNotEnabled, err)
		}

		swapped, err := s.storage.SwapBackupCodes(ctx, userID, stored.BackupCodeHashes, next)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to replace backup codes",
				logger.UserID(userID.String()),
				logger.Error(err),
			)
			return nil, err
		}
		if swapped {
			break
		}
		if attempt >= s.maxSwapAttempts {
			return nil, ErrConcurrentUpdate
		}

		if stored, err = s.storage.LoadState(ctx, userID); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "backup codes regenerated",
		logger.UserID(userID.String()),
		logger.Event(string(EventRotate)),
		logger.Remaining(len(codes)),
	)
	return codes, nil
}

func (s *service) Status(ctx context.Context, userID uuid.UUID) (Status, error) {
	stored, err := s.storage.LoadState(ctx, userID)
	if errors.Is(err, ErrRecordNotFound) {
		return StatusUnset, nil
	}
	if err != nil {
		return "", err
	}
	return stored.Status(), nil
}

// checkTOTP verifies code against the stored (possibly encrypted) secret at
// a single clock reading.
func (s *service) checkTOTP(userID uuid.UUID, storedSecret, code string) (bool, error) {
	secret, err := s.openSecret(userID, storedSecret)
	if err != nil {
		return false, err
	}
	ok, err := totp.ValidateTOTPAt(secret, code, s.now(), s.window)
	if err != nil {
		return false, errors.Join(ErrInvalidState, err)
	}
	return ok, nil
}

func (s *service) sealSecret(userID uuid.UUID, secret string) (string, error) {
	if s.encryptionKey == nil {
		return secret, nil
	}
	sealed, err := totp.SealSecret(secret, s.encryptionKey, userID[:])
	if err != nil {
		return "", errors.Join(ErrSecretEncryption, err)
	}
	return sealed, nil
}

func (s *service) openSecret(userID uuid.UUID, stored string) (string, error) {
	if s.encryptionKey == nil {
		return stored, nil
	}
	secret, err := totp.OpenSecret(stored, s.encryptionKey, userID[:])
	if err != nil {
		return "", errors.Join(ErrSecretDecryption, err)
	}
	return secret, nil
}
