package twofactor

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Option configures the service.
type Option func(*service)

// WithLogger sets a custom logger for the service
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWindow sets how many 30s steps on each side of now are accepted.
func WithWindow(window int) Option {
	return func(s *service) {
		if window >= 0 {
			s.window = window
		}
	}
}

// WithBackupCodeOptions configures backup code generation (alphabet, count).
func WithBackupCodeOptions(opts ...totp.BackupCodeOption) Option {
	return func(s *service) {
		s.backupCodeOpts = append(s.backupCodeOpts, opts...)
	}
}

// WithQRCodeSize sets the enrollment QR image size in pixels. Zero disables
// QR rendering.
func WithQRCodeSize(size int) Option {
	return func(s *service) {
		if size >= 0 {
			s.qrSize = size
		}
	}
}

// WithStrictLifecycle makes Enable fail with ErrAlreadyEnabled on an active
// setup and Disable fail with ErrAlreadyDisabled when nothing is configured.
func WithStrictLifecycle(strict bool) Option {
	return func(s *service) {
		s.strict = strict
	}
}

// WithMaxSwapAttempts bounds how often a lost backup-code swap is re-checked
// against fresh state before ErrConcurrentUpdate is returned.
func WithMaxSwapAttempts(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxSwapAttempts = n
		}
	}
}

// WithEncryptionKey enables encryption of stored secrets with AES-256-GCM.
// The key must be 32 bytes; a per-user key is derived from it.
func WithEncryptionKey(key []byte) Option {
	return func(s *service) {
		s.encryptionKey = key
	}
}
