// sign.go implements long-term identity signatures using Ed25519 (RFC 8032).
//
// Long-term keys are used for exactly one thing: signing and verifying
// handshake transcripts. Signing both ephemeral public keys plus the peer
// identity is the standard defense against man-in-the-middle substitution of
// ephemeral keys; the signature proves the long-term key holder endorsed
// this exact exchange, not just some key.
package crypto

import (
	"github.com/cloudflare/circl/sign/ed25519"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
)

// SigningKey is a long-term Ed25519 private key.
type SigningKey = ed25519.PrivateKey

// VerifyKey is a long-term Ed25519 public key.
type VerifyKey = ed25519.PublicKey

// GenerateSigningKey generates a new long-term Ed25519 key pair.
func GenerateSigningKey() (VerifyKey, SigningKey, error) {
	pub, priv, err := ed25519.GenerateKey(Reader)
	if err != nil {
		return nil, nil, serrors.NewCryptoError("GenerateSigningKey", err)
	}
	return pub, priv, nil
}

// Sign signs a transcript with the long-term private key.
func Sign(key SigningKey, transcript []byte) ([]byte, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, serrors.ErrInvalidKeySize
	}
	return ed25519.Sign(key, transcript), nil
}

// Verify checks a transcript signature against a long-term public key.
// A false return must be treated as AuthenticationFailed by the caller.
func Verify(key VerifyKey, transcript, signature []byte) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}
	if len(signature) != constants.Ed25519SignatureSize {
		return false
	}
	return ed25519.Verify(key, transcript, signature)
}

// ParseVerifyKey validates and returns an Ed25519 public key from raw bytes.
func ParseVerifyKey(data []byte) (VerifyKey, error) {
	if len(data) != ed25519.PublicKeySize {
		return nil, serrors.ErrMalformedKey
	}
	key := make(VerifyKey, ed25519.PublicKeySize)
	copy(key, data)
	return key, nil
}

// ParseSigningKey validates and returns an Ed25519 private key from raw bytes.
func ParseSigningKey(data []byte) (SigningKey, error) {
	if len(data) != ed25519.PrivateKeySize {
		return nil, serrors.ErrInvalidKeySize
	}
	key := make(SigningKey, ed25519.PrivateKeySize)
	copy(key, data)
	return key, nil
}
