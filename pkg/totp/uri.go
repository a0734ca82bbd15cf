package totp

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
var ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// TOTPParams contains the parameters for TOTP URI generation
type TOTPParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required TOTP parameters are present and valid
func (p TOTPParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GetTOTPURI builds the otpauth:// URI consumed by authenticator apps.
// Parameters are emitted in a fixed order; the secret is already URI-safe and
// is written as is.
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params TOTPParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	issuer := escapeComponent(params.Issuer)

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(issuer)
	b.WriteByte(':')
	b.WriteString(escapeComponent(params.AccountName))
	b.WriteString("?secret=")
	b.WriteString(params.Secret)
	b.WriteString("&issuer=")
	b.WriteString(issuer)
	b.WriteString("&algorithm=")
	b.WriteString(DefaultAlgorithm)
	b.WriteString("&digits=")
	b.WriteString(strconv.Itoa(DefaultDigits))
	b.WriteString("&period=")
	b.WriteString(strconv.Itoa(DefaultPeriod))

	return b.String(), nil
}

// escapeComponent percent-encodes s for use in both the label and the query.
// Spaces become %20 because '+' is not decoded inside the label path.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
