// Package totp implements the cryptographic core of TOTP two-factor
// authentication: RFC 4648 Base32, RFC 4226/6238 code generation and
// verification, otpauth:// provisioning URIs, single-use backup codes and
// AES-256-GCM helpers for keeping secrets encrypted at rest.
//
// Everything here is pure and safe for concurrent use. Persistence and the
// enable/verify/disable lifecycle live in package twofactor.
//
// # Codes
//
// Codes are always 6 digits over a 30 second step with HMAC-SHA1, which is
// what every mainstream authenticator app expects:
//
//	secret, _ := totp.GenerateSecretKey()
//	uri, _ := totp.GetTOTPURI(totp.TOTPParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//	ok, _ := totp.ValidateTOTP(secret, "123456")
//
// ValidateTOTPAt reads no clock; it checks the given instant and the
// neighbouring steps inside the window. Comparisons never short-circuit.
//
// # Backup codes
//
// GenerateBackupCodes returns ten XXXX-XXXX codes drawn from an alphabet
// without look-alike symbols. Only HashBackupCodes output should be stored;
// ConsumeBackupCode removes exactly one matching hash and returns the rest.
//
// # Error Handling
//
// Wrong or malformed codes are reported as false, never as errors. Errors are
// package level sentinels, possibly joined with the underlying cause, and are
// meant to be checked with errors.Is.
package totp
