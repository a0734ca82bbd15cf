package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"errors"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit TOTP codes
	DefaultPeriod    = 30     // 30-second time step (RFC 6238 standard)
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)
	DefaultWindow    = 1      // Accepted time steps on each side of the current one

	SecretSize = 20 // 160-bit secret (RFC 4226 recommendation)
)

var pow10 = [...]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return EncodeBase32(secret), nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm
// and returns the code left-padded with zeros to the requested number of digits.
func GenerateHOTP(key []byte, counter uint64, digits int) string {
	if digits <= 0 || digits >= len(pow10) {
		digits = DefaultDigits
	}

	// 8-byte big-endian counter
	msg := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(msg)
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects a 4-byte
	// window; the top bit is masked to keep the value within 31 bits.
	offset := sum[len(sum)-1] & 0x0f
	value := uint32(sum[offset]&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	code := value % pow10[digits]

	buf := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		buf[i] = byte('0' + code%10)
		code /= 10
	}
	return string(buf)
}

// GenerateTOTP generates the code for the time step containing t.
func GenerateTOTP(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter, ok := counterAt(t.Unix())
	if !ok {
		return "", ErrInvalidTime
	}

	return GenerateHOTP(key, counter, DefaultDigits), nil
}

// GenerateTOTPNow generates the code for the current time step.
func GenerateTOTPNow(secret string) (string, error) {
	return GenerateTOTP(secret, time.Now())
}

// ValidateTOTP checks code against the current time using DefaultWindow.
func ValidateTOTP(secret, code string) (bool, error) {
	return ValidateTOTPAt(secret, code, time.Now(), DefaultWindow)
}

// ValidateTOTPAt checks code against every time step in [at-window, at+window].
// The reference time is fixed for the whole scan. A malformed or wrong code
// is reported as false without an error; only an unusable secret fails.
func ValidateTOTPAt(secret, code string, at time.Time, window int) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !isNumeric(code, DefaultDigits) {
		return false, nil
	}

	if window < 0 {
		window = 0
	}

	now := at.Unix()
	for offset := -window; offset <= window; offset++ {
		counter, ok := counterAt(now + int64(offset)*DefaultPeriod)
		if !ok {
			continue
		}
		if ConstantTimeEqual(GenerateHOTP(key, counter, DefaultDigits), code) {
			return true, nil
		}
	}

	return false, nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	key := DecodeBase32(secret)
	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

func counterAt(unix int64) (uint64, bool) {
	if unix < 0 {
		return 0, false
	}
	return uint64(unix / DefaultPeriod), true
}

func isNumeric(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
