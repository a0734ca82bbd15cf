package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

const (
	// BackupCodeAlphabet omits the look-alike symbols 0/O and 1/I/L.
	BackupCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	DefaultBackupCodeCount = 10
	BackupCodeLength       = 8 // symbols per code, printed as two groups of four
)

// BackupCodeGenerator produces human-enterable single-use recovery codes.
type BackupCodeGenerator struct {
	alphabet string
	count    int
}

// BackupCodeOption configures a BackupCodeGenerator.
type BackupCodeOption func(*BackupCodeGenerator)

// WithAlphabet overrides the symbol set. Symbols must be unique upper-case
// ASCII letters or digits.
func WithAlphabet(alphabet string) BackupCodeOption {
	return func(g *BackupCodeGenerator) {
		if alphabet != "" {
			g.alphabet = alphabet
		}
	}
}

// WithCount sets how many codes Generate returns.
func WithCount(count int) BackupCodeOption {
	return func(g *BackupCodeGenerator) {
		g.count = count
	}
}

// NewBackupCodeGenerator creates a generator, defaulting to ten codes over BackupCodeAlphabet.
func NewBackupCodeGenerator(opts ...BackupCodeOption) (*BackupCodeGenerator, error) {
	g := &BackupCodeGenerator{
		alphabet: BackupCodeAlphabet,
		count:    DefaultBackupCodeCount,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.count < 1 {
		return nil, ErrInvalidBackupCodeCount
	}
	if err := validateAlphabet(g.alphabet); err != nil {
		return nil, err
	}

	return g, nil
}

// Generate creates a fresh set of codes formatted as XXXX-XXXX.
func (g *BackupCodeGenerator) Generate() ([]string, error) {
	codes := make([]string, g.count)
	for i := range codes {
		code, err := g.generateOne()
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

// generateOne draws symbols with rejection sampling so every symbol is
// equally likely whatever the alphabet size.
func (g *BackupCodeGenerator) generateOne() (string, error) {
	n := len(g.alphabet)
	limit := 256 - 256%n

	symbols := make([]byte, 0, BackupCodeLength)
	buf := make([]byte, BackupCodeLength*2)
	for len(symbols) < BackupCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Join(ErrFailedToGenerateBackupCode, err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			symbols = append(symbols, g.alphabet[int(b)%n])
			if len(symbols) == BackupCodeLength {
				break
			}
		}
	}

	half := BackupCodeLength / 2
	return string(symbols[:half]) + "-" + string(symbols[half:]), nil
}

// GenerateBackupCodes creates ten codes with the default alphabet.
func GenerateBackupCodes() ([]string, error) {
	g, err := NewBackupCodeGenerator()
	if err != nil {
		return nil, err
	}
	return g.Generate()
}

// NormalizeBackupCode folds full-width input to ASCII, removes hyphens and
// whitespace and upper-cases the rest.
func NormalizeBackupCode(code string) string {
	code = width.Fold.String(code)
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, code)
}

// HashBackupCode returns the hex SHA-256 of the normalized code. Only hashes
// are persisted.
func HashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(NormalizeBackupCode(code)))
	return hex.EncodeToString(sum[:])
}

// HashBackupCodes hashes every code in order.
func HashBackupCodes(codes []string) []string {
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = HashBackupCode(code)
	}
	return hashes
}

// VerifyBackupCode compares code against a single stored hash in constant time.
func VerifyBackupCode(code, hashedCode string) bool {
	return subtle.ConstantTimeCompare([]byte(HashBackupCode(code)), []byte(hashedCode)) == 1
}

// ConsumeBackupCode looks code up in hashes. On a match it returns true and a
// new slice with exactly that entry removed; otherwise false and hashes as
// given. The input slice is never modified and every entry is compared.
func ConsumeBackupCode(hashes []string, code string) (bool, []string) {
	if NormalizeBackupCode(code) == "" {
		return false, hashes
	}

	want := []byte(HashBackupCode(code))
	match := -1
	for i, h := range hashes {
		if subtle.ConstantTimeCompare(want, []byte(h)) == 1 && match < 0 {
			match = i
		}
	}
	if match < 0 {
		return false, hashes
	}

	remaining := slices.Clone(hashes)
	return true, slices.Delete(remaining, match, match+1)
}

func validateAlphabet(alphabet string) error {
	if len(alphabet) < 2 || len(alphabet) > 256 {
		return ErrInvalidBackupCodeAlphabet
	}
	seen := make(map[byte]struct{}, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return ErrInvalidBackupCodeAlphabet
		}
		if _, dup := seen[c]; dup {
			return ErrInvalidBackupCodeAlphabet
		}
		seen[c] = struct{}{}
	}
	return nil
}
