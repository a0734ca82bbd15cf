package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	AESKeySize = 32 // AES-256

	hkdfInfo = "twofactor-totp-secret-v1"
)

// SealSecret encrypts secret under the key derived for subject (usually the
// user ID bytes). A ciphertext sealed for one subject does not open for another.
func SealSecret(secret string, appKey, subject []byte) (string, error) {
	key, err := DeriveKey(appKey, subject)
	if err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}
	return EncryptSecret(secret, key)
}

// OpenSecret reverses SealSecret.
func OpenSecret(sealed string, appKey, subject []byte) (string, error) {
	key, err := DeriveKey(appKey, subject)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}
	return DecryptSecret(sealed, key)
}

// EncryptSecret seals plainText with AES-256-GCM under a random nonce and
// returns base64(nonce || ciphertext || tag).
func EncryptSecret(plainText string, key []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}

	out := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plainText)+aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}
	out = aead.Seal(out, out, []byte(plainText), nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptSecret opens a value produced by EncryptSecret.
func DecryptSecret(sealed string, key []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", errors.Join(ErrFailedToDecryptSecret, ErrInvalidCipherTooShort)
	}

	n := aead.NonceSize()
	plain, err := aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}
	return string(plain), nil
}

// DeriveKey expands the application key into a per-subject AES-256 key with
// HKDF-SHA256, using subject as salt.
func DeriveKey(appKey, subject []byte) ([]byte, error) {
	if len(appKey) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}

	derived := make([]byte, AESKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, appKey, subject, []byte(hkdfInfo)), derived); err != nil {
		return nil, errors.Join(ErrFailedToDeriveKey, err)
	}
	return derived, nil
}

// GenerateEncryptionKey returns a random application key.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateEncryptionKey, err)
	}
	return key, nil
}

// GenerateEncodedEncryptionKey returns a fresh key in the base64 form read
// from TOTP_ENCRYPTION_KEY.
func GenerateEncodedEncryptionKey() (string, error) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// ParseEncryptionKey decodes a base64 key and checks its length.
func ParseEncryptionKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrEncryptionKeyNotSet)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}
	if len(key) != AESKeySize {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrInvalidEncryptionKeyLength)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
