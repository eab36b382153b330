package identity

import (
	"encoding/binary"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
	"strongbox/pkg/crypto"
)

// Certificate binds an identity name to a long-term public key, signed by an
// issuer key. The wire encoding is:
//
//	+---------+------+------------+-----------+
//	| NameLen | Name | PublicKey  | Signature |
//	| 2B BE   | var  | 32B        | 64B       |
//	+---------+------+------------+-----------+
//
// The signature covers the name-length, name, and public key bytes exactly
// as encoded, so the verifier reconstructs the signed content from the
// received bytes rather than re-serializing parsed structures.
type Certificate struct {
	Name      string
	PublicKey crypto.VerifyKey
	Signature []byte
}

// IssueCertificate creates a certificate for (name, publicKey) signed with
// the issuer's key. Self-issued certificates (issuer == subject) are allowed;
// whether to trust one is the verifier's policy.
func IssueCertificate(name string, publicKey crypto.VerifyKey, issuerKey crypto.SigningKey) (*Certificate, error) {
	if name == "" || len(name) > constants.UsernameMaxLen {
		return nil, serrors.ErrInvalidCertificate
	}
	if _, err := crypto.ParseVerifyKey(publicKey); err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(issuerKey, certContent(name, publicKey))
	if err != nil {
		return nil, err
	}

	return &Certificate{
		Name:      name,
		PublicKey: publicKey,
		Signature: sig,
	}, nil
}

// Marshal returns the wire encoding of the certificate.
func (c *Certificate) Marshal() []byte {
	content := certContent(c.Name, c.PublicKey)
	out := make([]byte, 0, len(content)+len(c.Signature))
	out = append(out, content...)
	out = append(out, c.Signature...)
	return out
}

// ParseCertificate decodes a certificate from its wire encoding.
func ParseCertificate(data []byte) (*Certificate, error) {
	if len(data) < constants.FieldLenSize {
		return nil, serrors.ErrInvalidCertificate
	}

	nameLen := int(binary.BigEndian.Uint16(data))
	if nameLen == 0 || nameLen > constants.UsernameMaxLen {
		return nil, serrors.ErrInvalidCertificate
	}

	want := constants.FieldLenSize + nameLen +
		constants.Ed25519PublicKeySize + constants.Ed25519SignatureSize
	if len(data) != want {
		return nil, serrors.ErrInvalidCertificate
	}

	offset := constants.FieldLenSize
	name := string(data[offset : offset+nameLen])
	offset += nameLen

	publicKey, err := crypto.ParseVerifyKey(data[offset : offset+constants.Ed25519PublicKeySize])
	if err != nil {
		return nil, serrors.ErrInvalidCertificate
	}
	offset += constants.Ed25519PublicKeySize

	sig := make([]byte, constants.Ed25519SignatureSize)
	copy(sig, data[offset:])

	return &Certificate{
		Name:      name,
		PublicKey: publicKey,
		Signature: sig,
	}, nil
}

// Verify checks the certificate's signature against the issuer's public key.
func (c *Certificate) Verify(issuerKey crypto.VerifyKey) error {
	if !crypto.Verify(issuerKey, certContent(c.Name, c.PublicKey), c.Signature) {
		return serrors.ErrInvalidCertificate
	}
	return nil
}

// certContent returns the bytes the certificate signature covers.
func certContent(name string, publicKey crypto.VerifyKey) []byte {
	out := make([]byte, 0, constants.FieldLenSize+len(name)+len(publicKey))
	var lenBuf [constants.FieldLenSize]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(name)))
	out = append(out, lenBuf[:]...)
	out = append(out, name...)
	out = append(out, publicKey...)
	return out
}
