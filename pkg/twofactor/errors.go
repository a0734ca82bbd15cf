package twofactor

import "errors"

// Storage errors. Adapters return these; the service passes them through.
var (
	ErrRecordNotFound     = errors.New("two-factor record not found")
	ErrStorageWriteFailed = errors.New("failed to write two-factor record")
)

// Lifecycle errors.
var (
	ErrSecretNotConfigured = errors.New("two-factor secret is not configured")
	ErrAlreadyEnabled      = errors.New("two-factor authentication is already enabled")
	ErrAlreadyDisabled     = errors.New("two-factor authentication is already disabled")
	ErrNotEnabled          = errors.New("two-factor authentication is not enabled")
	ErrInvalidTransition   = errors.New("invalid two-factor lifecycle transition")
	ErrInvalidState        = errors.New("invalid two-factor state: enabled without a secret")
	ErrConcurrentUpdate    = errors.New("backup codes were modified concurrently, giving up")
)

// Configuration and crypto errors.
var (
	ErrMissingIssuer    = errors.New("issuer is required")
	ErrNilStorage       = errors.New("storage is required")
	ErrSecretEncryption = errors.New("failed to encrypt two-factor secret")
	ErrSecretDecryption = errors.New("failed to decrypt two-factor secret")
)
