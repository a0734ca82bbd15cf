// Package qrcode renders short strings, typically otpauth:// provisioning
// URIs, as PNG QR codes using github.com/skip2/go-qrcode.
package qrcode
