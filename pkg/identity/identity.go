// Package identity supplies the long-term key material the handshake engine
// consumes: the local party's name, signing key, and certificate, plus a
// registry mapping usernames to their long-term public keys.
//
// The package defines the in-memory shapes only. Trust policy stops at
// "verify a signature against a supplied certificate or public key"; there
// is no CA hierarchy and no revocation.
package identity

import (
	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
	"strongbox/pkg/crypto"
)

// Local is one party's own long-term identity: its name, its Ed25519 signing
// key, and the certificate it presents to peers. Immutable once constructed.
type Local struct {
	name string
	key  crypto.SigningKey
	cert *Certificate
}

// NewLocal constructs a local identity. The certificate may be nil for
// parties that authenticate via a pinned public key instead (clients in the
// registry are looked up by name, so they carry no certificate).
func NewLocal(name string, key crypto.SigningKey, cert *Certificate) (*Local, error) {
	if name == "" || len(name) > constants.UsernameMaxLen {
		return nil, serrors.ErrInvalidCertificate
	}
	if _, err := crypto.ParseSigningKey(key); err != nil {
		return nil, err
	}
	return &Local{name: name, key: key, cert: cert}, nil
}

// Name returns the party's identity name.
func (l *Local) Name() string { return l.name }

// SigningKey returns the long-term private key.
func (l *Local) SigningKey() crypto.SigningKey { return l.key }

// Certificate returns the party's certificate, or nil if it has none.
func (l *Local) Certificate() *Certificate { return l.cert }

// Sign signs a handshake transcript with the long-term key.
func (l *Local) Sign(transcript []byte) ([]byte, error) {
	return crypto.Sign(l.key, transcript)
}
