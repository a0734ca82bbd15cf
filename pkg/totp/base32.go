package totp

// base32Alphabet is the RFC 4648 alphabet. Secrets are exchanged without padding.
const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// EncodeBase32 encodes src with the RFC 4648 alphabet and no padding.
// Bits are consumed most-significant first; a trailing group shorter than
// five bits is left-shifted and zero-filled.
func EncodeBase32(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	out := make([]byte, 0, (len(src)*8+4)/5)

	var buffer uint32
	bits := 0
	for _, b := range src {
		buffer = buffer<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			out = append(out, base32Alphabet[(buffer>>(bits-5))&0x1f])
			bits -= 5
		}
	}
	if bits > 0 {
		out = append(out, base32Alphabet[(buffer<<(5-bits))&0x1f])
	}

	return string(out)
}

// DecodeBase32 decodes a Base32 string case-insensitively.
// Characters outside the alphabet (spaces, hyphens, padding) are skipped so
// hand-typed secrets decode without pre-cleaning. Leftover bits that do not
// fill a whole byte are dropped.
func DecodeBase32(s string) []byte {
	out := make([]byte, 0, len(s)*5/8)

	var buffer uint32
	bits := 0
	for i := 0; i < len(s); i++ {
		v, ok := base32Value(s[i])
		if !ok {
			continue
		}
		buffer = buffer<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			out = append(out, byte(buffer>>(bits-8)))
			bits -= 8
		}
	}

	return out
}

func base32Value(c byte) (byte, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return c - 'A', true
	case c >= 'a' && c <= 'z':
		return c - 'a', true
	case c >= '2' && c <= '7':
		return c - '2' + 26, true
	}
	return 0, false
}
