package totp

import "crypto/subtle"

// ConstantTimeEqual reports whether a and b are equal.
// It always walks the longer of the two inputs and folds every byte
// difference into one accumulator, so the running time does not depend on
// where the first mismatch is.
func ConstantTimeEqual(a, b string) bool {
	n := max(len(a), len(b))

	var acc byte
	for i := range n {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		acc |= x ^ y
	}

	sameLen := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	return sameLen&subtle.ConstantTimeByteEq(acc, 0) == 1
}
