package twofactor

import (
	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Config holds the environment driven settings of the service.
type Config struct {
	Issuer             string `env:"TWOFACTOR_ISSUER,required"`                                                   // Name shown in authenticator apps.
	Window             int    `env:"TWOFACTOR_WINDOW" envDefault:"1"`                                             // Accepted 30s steps around now.
	BackupCodeCount    int    `env:"TWOFACTOR_BACKUP_CODE_COUNT" envDefault:"10"`                                 // Codes issued per set.
	BackupCodeAlphabet string `env:"TWOFACTOR_BACKUP_CODE_ALPHABET" envDefault:"ABCDEFGHJKMNPQRSTUVWXYZ23456789"` // Symbols used in backup codes.
	QRCodeSize         int    `env:"TWOFACTOR_QR_SIZE" envDefault:"256"`                                          // Enrollment QR size, 0 disables it.
	StrictLifecycle    bool   `env:"TWOFACTOR_STRICT_LIFECYCLE" envDefault:"false"`                               // Reject redundant enable/disable.
	MaxSwapAttempts    int    `env:"TWOFACTOR_MAX_SWAP_ATTEMPTS" envDefault:"3"`                                  // Backup-code swap retries on contention.
	EncryptionKey      string `env:"TOTP_ENCRYPTION_KEY"`                                                         // Base64 32-byte key; empty stores secrets in clear.
}

// LoadConfig reads Config from the environment (and .env, if present).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFromConfig builds a service from cfg. Explicit options are applied after
// the config and win on conflict.
func NewFromConfig(storage Storage, cfg Config, opts ...Option) (Service, error) {
	base := []Option{
		WithWindow(cfg.Window),
		WithQRCodeSize(cfg.QRCodeSize),
		WithStrictLifecycle(cfg.StrictLifecycle),
		WithMaxSwapAttempts(cfg.MaxSwapAttempts),
		WithBackupCodeOptions(totp.WithAlphabet(cfg.BackupCodeAlphabet)),
	}
	if cfg.BackupCodeCount > 0 {
		base = append(base, WithBackupCodeOptions(totp.WithCount(cfg.BackupCodeCount)))
	}
	if cfg.EncryptionKey != "" {
		key, err := totp.ParseEncryptionKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		base = append(base, WithEncryptionKey(key))
	}
	return New(storage, cfg.Issuer, append(base, opts...)...)
}
