// Package constants defines protocol parameters and wire-frozen sizes for the
// strongbox secure command channel.
//
// Values in this package are part of the wire format: changing any of them
// breaks interoperability with existing peers.
package constants

// Protocol identification
const (
	// ProtocolVersion is the current version of the strongbox protocol
	ProtocolVersion uint16 = 0x0001

	// ProtocolName is used for domain separation in key derivation
	ProtocolName = "STRONGBOX-v1"
)

// Framing parameters
const (
	// MaxFieldLen is the protocol-wide ceiling on a length-prefixed field.
	// Any declared length above it is a protocol violation and is rejected
	// before a buffer is allocated.
	MaxFieldLen = 4096

	// FieldLenSize is the width of the field length prefix in bytes
	FieldLenSize = 2

	// SeqSize is the width of the header sequence number in bytes
	SeqSize = 4
)

// X25519 Parameters (RFC 7748)
const (
	// X25519PublicKeySize is the size of an X25519 public key in bytes
	X25519PublicKeySize = 32

	// X25519SharedSecretSize is the size of the X25519 shared secret in bytes
	X25519SharedSecretSize = 32
)

// Ed25519 Parameters (RFC 8032)
const (
	// Ed25519PublicKeySize is the size of an Ed25519 public key in bytes
	Ed25519PublicKeySize = 32

	// Ed25519SignatureSize is the size of an Ed25519 signature in bytes
	Ed25519SignatureSize = 64
)

// Symmetric Encryption Parameters
const (
	// SessionKeySize is the size of the derived session key in bytes
	SessionKeySize = 32

	// NonceSize is the AEAD nonce size in bytes (96 bits)
	NonceSize = 12

	// TagSize is the AEAD authentication tag size in bytes
	TagSize = 16
)

// Key Derivation Parameters (SHAKE-256)
const (
	// DomainSeparatorSession is used when deriving the session key
	DomainSeparatorSession = "STRONGBOX-v1-SessionKey"

	// DomainSeparatorServerAuth prefixes the transcript the server signs
	DomainSeparatorServerAuth = "STRONGBOX-v1-ServerAuth"

	// DomainSeparatorClientAuth prefixes the transcript the client signs
	DomainSeparatorClientAuth = "STRONGBOX-v1-ClientAuth"
)

// Application payload widths. Command fields are padded to these fixed
// widths before encryption so ciphertext length never leaks content length.
const (
	// UsernameMaxLen bounds the username field in the handshake
	UsernameMaxLen = 32

	// FilenameMaxLen is the fixed width of a filename payload field
	FilenameMaxLen = 128

	// StatusLen is the fixed width of a server status reply field
	StatusLen = 64
)

// CipherSuite identifiers
type CipherSuite uint16

const (
	// CipherSuiteChaCha20Poly1305 uses ChaCha20-Poly1305 for the channel
	CipherSuiteChaCha20Poly1305 CipherSuite = 0x0001

	// CipherSuiteAES256GCM uses AES-256-GCM for the channel
	CipherSuiteAES256GCM CipherSuite = 0x0002
)

// String returns a human-readable name for the cipher suite
func (cs CipherSuite) String() string {
	switch cs {
	case CipherSuiteChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	case CipherSuiteAES256GCM:
		return "AES-256-GCM"
	default:
		return "Unknown"
	}
}

// IsSupported returns true if the cipher suite is supported
func (cs CipherSuite) IsSupported() bool {
	return cs == CipherSuiteChaCha20Poly1305 || cs == CipherSuiteAES256GCM
}
