// aead.go implements authenticated encryption with associated data.
//
// Two suites are supported:
//   - ChaCha20-Poly1305: the default channel cipher
//   - AES-256-GCM: hardware-accelerated alternative
//
// Both use a 96-bit nonce and a 128-bit tag. The channel transmits the nonce
// in the message header and the ciphertext and tag as separate fields, so
// this API takes an explicit nonce and returns the tag separately rather
// than concatenating nonce||ciphertext||tag.
//
// CRITICAL: nonce reuse under one key is a catastrophic confidentiality and
// integrity break for both suites. Nonces must come from NewNonce, which
// draws from the CSPRNG; uniqueness is enforced at generation, never assumed.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
)

// AEAD is an authenticated cipher bound to one session key.
type AEAD struct {
	cipher cipher.AEAD
	suite  constants.CipherSuite
}

// NewAEAD creates an AEAD cipher for the given suite and 32-byte key.
func NewAEAD(suite constants.CipherSuite, key []byte) (*AEAD, error) {
	if len(key) != constants.SessionKeySize {
		return nil, serrors.ErrInvalidKeySize
	}

	var aeadCipher cipher.AEAD
	var err error

	switch suite {
	case constants.CipherSuiteChaCha20Poly1305:
		aeadCipher, err = chacha20poly1305.New(key)
		if err != nil {
			return nil, serrors.NewCryptoError("NewAEAD", err)
		}

	case constants.CipherSuiteAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, serrors.NewCryptoError("NewAEAD", err)
		}
		aeadCipher, err = cipher.NewGCM(block)
		if err != nil {
			return nil, serrors.NewCryptoError("NewAEAD", err)
		}

	default:
		return nil, serrors.ErrUnsupportedCipherSuite
	}

	return &AEAD{cipher: aeadCipher, suite: suite}, nil
}

// NewNonce returns a fresh random 96-bit nonce from the CSPRNG.
func NewNonce() ([]byte, error) {
	return SecureRandomBytes(constants.NonceSize)
}

// Seal encrypts and authenticates plaintext under the given nonce, with
// additionalData covered by the tag but not encrypted. Returns the
// ciphertext and the authentication tag separately.
func (a *AEAD) Seal(nonce, plaintext, additionalData []byte) (ciphertext, tag []byte, err error) {
	if len(nonce) != constants.NonceSize {
		return nil, nil, serrors.ErrInvalidNonce
	}

	sealed := a.cipher.Seal(nil, nonce, plaintext, additionalData)
	split := len(sealed) - constants.TagSize
	return sealed[:split], sealed[split:], nil
}

// Open verifies and decrypts a ciphertext+tag pair. additionalData must
// match the value passed to Seal byte for byte.
//
// A verification failure returns ErrAuthenticationFailed and no plaintext;
// partial plaintext is never exposed.
func (a *AEAD) Open(nonce, ciphertext, tag, additionalData []byte) ([]byte, error) {
	if len(nonce) != constants.NonceSize {
		return nil, serrors.ErrInvalidNonce
	}
	if len(tag) != constants.TagSize {
		return nil, serrors.ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.cipher.Open(nil, nonce, sealed, additionalData)
	if err != nil {
		return nil, serrors.ErrAuthenticationFailed
	}

	return plaintext, nil
}

// Suite returns the cipher suite identifier.
func (a *AEAD) Suite() constants.CipherSuite {
	return a.suite
}

// Overhead returns the bytes added to a plaintext by encryption (the tag).
func (a *AEAD) Overhead() int {
	return a.cipher.Overhead()
}
