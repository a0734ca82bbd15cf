// Package twofactor implements the two-factor authentication lifecycle on top
// of package totp: enrollment, setup confirmation, login verification with
// TOTP or single-use backup codes, backup code rotation and disabling.
//
// State lives behind the Storage port. The service is stateless between calls
// and safe for concurrent use as long as the Storage implementation is.
// Backup codes are consumed through Storage.SwapBackupCodes, so two concurrent
// logins presenting the same code cannot both succeed.
//
// Lifecycle:
//
//	unset --Enable--> pending --VerifySetup--> active
//	  ^                  |                        |
//	  +-----Disable------+--------Disable---------+
//
// Enable on an active setup starts a new enrollment (or fails with
// ErrAlreadyEnabled under WithStrictLifecycle).
//
// Usage:
//
//	store := memstore.New()
//	svc, err := twofactor.New(store, "Acme",
//		twofactor.WithLogger(log),
//		twofactor.WithEncryptionKey(key),
//	)
//	if err != nil {
//		return err
//	}
//
//	enrollment, err := svc.Enable(ctx, userID, "alice@example.com")
//	// show enrollment.QRCode and enrollment.BackupCodes to the user once
//
//	ok, err := svc.VerifySetup(ctx, userID, codeFromApp)
//	ok, err = svc.VerifyLogin(ctx, userID, codeOrBackupCode)
//
// Configuration can also be read from the environment with LoadConfig and
// NewFromConfig. See Config for the variables.
package twofactor
