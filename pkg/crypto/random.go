// Package crypto provides the cryptographic primitives for the strongbox
// protocol: X25519 key agreement, Ed25519 signatures, SHAKE-256 key
// derivation, and AEAD encryption. It wraps library primitives with size
// checks and consistent error handling; protocol logic lives in pkg/channel.
//
// All random number generation uses crypto/rand, which sources entropy from
// the operating system's CSPRNG.
package crypto

import (
	"crypto/rand"
	"io"

	serrors "strongbox/internal/errors"
)

// SecureRandom reads cryptographically secure random bytes into the provided
// slice. It only fails if the system's random number generator fails, which
// should be treated as a critical system failure.
func SecureRandom(b []byte) error {
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		return serrors.NewCryptoError("SecureRandom", err)
	}
	return nil
}

// SecureRandomBytes returns n cryptographically secure random bytes.
func SecureRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := SecureRandom(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Reader is an io.Reader that returns cryptographically secure random bytes.
var Reader = rand.Reader

// ConstantTimeCompare compares two byte slices in constant time.
// Returns true if the slices are equal. This prevents timing attacks when
// comparing secrets.
func ConstantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := range a {
		result |= a[i] ^ b[i]
	}
	return result == 0
}

// Zeroize overwrites sensitive data with zeros. Call on keys and secrets when
// they are no longer needed.
//
// Note: the Go runtime may have already copied the data; this is best-effort
// hygiene, not a guarantee.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroizeMultiple overwrites multiple byte slices with zeros.
func ZeroizeMultiple(slices ...[]byte) {
	for _, s := range slices {
		Zeroize(s)
	}
}
