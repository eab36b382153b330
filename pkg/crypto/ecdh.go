// ecdh.go implements X25519 ephemeral key agreement (RFC 7748).
//
// Each connection generates a fresh key pair; the private half exists only
// for the duration of one handshake and is discarded after the shared secret
// is computed. This is what gives the protocol forward secrecy: compromise
// of a long-term signing key does not expose past session keys.
//
// The raw shared secret is never used directly as a key; it always passes
// through the SHAKE-256 KDF with identity-binding context (see kdf.go).
package crypto

import (
	"crypto/ecdh"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
)

// EphemeralKeyPair is a fresh X25519 key pair generated per handshake.
// It must never be reused across connections.
type EphemeralKeyPair struct {
	privateKey *ecdh.PrivateKey
	publicKey  *ecdh.PublicKey
}

// GenerateEphemeralKeyPair generates a new X25519 key pair from the CSPRNG.
func GenerateEphemeralKeyPair() (*EphemeralKeyPair, error) {
	curve := ecdh.X25519()

	privateKey, err := curve.GenerateKey(Reader)
	if err != nil {
		return nil, serrors.NewCryptoError("GenerateEphemeralKeyPair", err)
	}

	return &EphemeralKeyPair{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// PublicKeyBytes returns the 32-byte encoding of the public half.
// These are the exact bytes transmitted on the wire and signed in transcripts.
func (kp *EphemeralKeyPair) PublicKeyBytes() []byte {
	return kp.publicKey.Bytes()
}

// SharedSecret computes the X25519 shared secret with the peer's public key.
// Returns ErrMalformedKey semantics via a CryptoError if the peer key is a
// low-order point.
func (kp *EphemeralKeyPair) SharedSecret(peerPublic *ecdh.PublicKey) ([]byte, error) {
	if kp.privateKey == nil {
		return nil, serrors.ErrInvalidState
	}
	if peerPublic == nil {
		return nil, serrors.ErrMalformedKey
	}

	secret, err := kp.privateKey.ECDH(peerPublic)
	if err != nil {
		return nil, serrors.NewCryptoError("SharedSecret", err)
	}
	return secret, nil
}

// Discard drops the private half. The key pair can no longer compute shared
// secrets; the public half remains readable for transcript reconstruction.
func (kp *EphemeralKeyPair) Discard() {
	// ecdh.PrivateKey does not expose its bytes for zeroization; dropping
	// the reference is the best the runtime allows.
	kp.privateKey = nil
}

// ParsePeerPublicKey parses a peer's X25519 public key from its wire encoding.
func ParsePeerPublicKey(data []byte) (*ecdh.PublicKey, error) {
	if len(data) != constants.X25519PublicKeySize {
		return nil, serrors.ErrMalformedKey
	}

	curve := ecdh.X25519()
	publicKey, err := curve.NewPublicKey(data)
	if err != nil {
		return nil, serrors.ErrMalformedKey
	}

	return publicKey, nil
}
