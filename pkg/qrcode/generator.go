package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

// DefaultSize is the image edge in pixels used when no size is given.
const DefaultSize = 256

// RecoveryLevel is the error correction level of the symbol.
type RecoveryLevel = skipqrcode.RecoveryLevel

const (
	Low     RecoveryLevel = skipqrcode.Low
	Medium  RecoveryLevel = skipqrcode.Medium
	High    RecoveryLevel = skipqrcode.High
	Highest RecoveryLevel = skipqrcode.Highest
)

type options struct {
	size  int
	level RecoveryLevel
}

// Option configures image generation.
type Option func(*options)

// WithSize sets the image edge in pixels. Non-positive values keep DefaultSize.
func WithSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithRecoveryLevel sets the error correction level (Medium by default).
func WithRecoveryLevel(level RecoveryLevel) Option {
	return func(o *options) { o.level = level }
}

// Generate renders content as a square PNG image.
func Generate(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	o := options{size: DefaultSize, level: Medium}
	for _, opt := range opts {
		opt(&o)
	}

	png, err := skipqrcode.Encode(content, o.level, o.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// DataURI renders content as a PNG and returns it as a data:image/png;base64
// URI, ready for an <img src> attribute:
//
//	src, err := qrcode.DataURI(enrollment.URI, qrcode.WithSize(200))
func DataURI(content string, opts ...Option) (string, error) {
	png, err := Generate(content, opts...)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
