// Package errors defines the error taxonomy for the strongbox protocol.
// Every error here is fatal to the connection it occurred on: the core never
// retries, and a poisoned connection must not be reused.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for wire framing
var (
	// ErrFieldTooLarge indicates a field length above the protocol ceiling
	ErrFieldTooLarge = errors.New("wire: field exceeds maximum length")

	// ErrTruncated indicates the stream ended inside a frame
	ErrTruncated = errors.New("wire: truncated message")

	// ErrUnexpectedMessage indicates a message type the caller did not expect
	ErrUnexpectedMessage = errors.New("wire: unexpected message type")
)

// Sentinel errors for the handshake
var (
	// ErrUnknownUser indicates the client username is not registered
	ErrUnknownUser = errors.New("handshake: unknown user")

	// ErrMalformedKey indicates a peer key that could not be parsed
	ErrMalformedKey = errors.New("handshake: malformed public key")

	// ErrHandshakeFailed indicates the handshake could not complete
	ErrHandshakeFailed = errors.New("handshake: failed")

	// ErrInvalidState indicates a handshake operation in the wrong state
	ErrInvalidState = errors.New("handshake: invalid state")
)

// Sentinel errors for the secure channel
var (
	// ErrAuthenticationFailed indicates signature or AEAD tag verification failed
	ErrAuthenticationFailed = errors.New("channel: authentication failed")

	// ErrSequenceMismatch indicates a replayed or reordered message
	ErrSequenceMismatch = errors.New("channel: sequence number mismatch")

	// ErrSequenceExhausted indicates the sequence counter would wrap
	ErrSequenceExhausted = errors.New("channel: sequence space exhausted")

	// ErrChannelClosed indicates the channel has been poisoned or closed
	ErrChannelClosed = errors.New("channel: closed")

	// ErrPayloadTooLarge indicates a command field longer than its fixed width
	ErrPayloadTooLarge = errors.New("channel: payload field exceeds fixed width")
)

// Sentinel errors for cryptographic operations
var (
	// ErrInvalidKeySize indicates a key of incorrect length
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidNonce indicates a nonce of incorrect length
	ErrInvalidNonce = errors.New("crypto: invalid nonce size")

	// ErrUnsupportedCipherSuite indicates an unknown cipher suite identifier
	ErrUnsupportedCipherSuite = errors.New("crypto: unsupported cipher suite")
)

// Sentinel errors for identity material
var (
	// ErrInvalidCertificate indicates a certificate that failed to parse or verify
	ErrInvalidCertificate = errors.New("identity: invalid certificate")
)

// Sentinel errors for command execution
var (
	// ErrInvalidFilename indicates a filename the server refuses to operate on
	ErrInvalidFilename = errors.New("server: invalid filename")
)

// CryptoError wraps a cryptographic failure with the operation that caused it
type CryptoError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// ProtocolError wraps a protocol failure with the phase it occurred in
type ProtocolError struct {
	Phase string // Protocol phase (e.g. "handshake", "channel", "framing")
	Err   error  // Underlying error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol %s: %v", e.Phase, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a new ProtocolError
func NewProtocolError(phase string, err error) *ProtocolError {
	return &ProtocolError{Phase: phase, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
