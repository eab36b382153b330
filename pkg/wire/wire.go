// Package wire implements the framing layer shared by the handshake and the
// secure channel.
//
// Wire Format:
//
// Handshake messages carry a bare header; channel messages add a nonce:
//
//	+------+---------+---------+
//	| Type | Seq     | Nonce   |
//	| 1B   | 4B BE   | 12B (*) |
//	+------+---------+---------+
//	(*) handshake messages omit the nonce
//
// followed by zero or more length-prefixed fields:
//
//	+--------+----------+
//	| Length | Content  |
//	| 2B BE  | Variable |
//	+--------+----------+
//
// A declared field length above MaxFieldLen is rejected before any buffer is
// allocated, bounding memory pressure from a malicious peer. All operations
// perform blocking I/O on the supplied stream and never retry; retry policy
// belongs to the caller.
package wire

import (
	"encoding/binary"
	"errors"
	"io"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
)

// MessageType identifies a protocol message.
type MessageType uint8

// Protocol message types.
const (
	// MsgAuthStart opens the handshake from the client.
	MsgAuthStart MessageType = 0x01
	// MsgAuthServerAns carries the server's half of the key exchange.
	MsgAuthServerAns MessageType = 0x02
	// MsgAuthClientFin carries the client's transcript signature.
	MsgAuthClientFin MessageType = 0x03

	// MsgRenameReq renames a remote file (two filename fields).
	MsgRenameReq MessageType = 0x10
	// MsgDeleteReq deletes a remote file (one filename field).
	MsgDeleteReq MessageType = 0x11
	// MsgLogoutReq ends the session cleanly (no payload fields).
	MsgLogoutReq MessageType = 0x12

	// MsgStatusAns is the server's reply to any command (one status field).
	MsgStatusAns MessageType = 0x20
)

// String returns a human-readable name for the message type.
func (mt MessageType) String() string {
	switch mt {
	case MsgAuthStart:
		return "AuthStart"
	case MsgAuthServerAns:
		return "AuthServerAns"
	case MsgAuthClientFin:
		return "AuthClientFin"
	case MsgRenameReq:
		return "RenameReq"
	case MsgDeleteReq:
		return "DeleteReq"
	case MsgLogoutReq:
		return "LogoutReq"
	case MsgStatusAns:
		return "StatusAns"
	default:
		return "Unknown"
	}
}

// Header is the plaintext prefix of a channel message. Type and Seq are
// covered by the AEAD tag as associated data; the nonce is authenticated
// implicitly by its role in decryption.
type Header struct {
	Type  MessageType
	Seq   uint32
	Nonce []byte
}

// headerPrefixSize is the size of the type and sequence fields.
const headerPrefixSize = 1 + constants.SeqSize

// AAD returns the header bytes covered by the authentication tag: the exact
// type and sequence bytes as they appear on the wire, so header tampering is
// detected even though the header itself is not secret.
func (h Header) AAD() []byte {
	aad := make([]byte, headerPrefixSize)
	aad[0] = byte(h.Type)
	binary.BigEndian.PutUint32(aad[1:], h.Seq)
	return aad
}

// WriteHeader writes a channel message header: type, sequence number, nonce.
func WriteHeader(w io.Writer, typ MessageType, seq uint32, nonce []byte) error {
	if len(nonce) != constants.NonceSize {
		return serrors.ErrInvalidNonce
	}

	buf := make([]byte, headerPrefixSize+constants.NonceSize)
	buf[0] = byte(typ)
	binary.BigEndian.PutUint32(buf[1:], seq)
	copy(buf[headerPrefixSize:], nonce)

	if _, err := w.Write(buf); err != nil {
		return serrors.NewProtocolError("framing", err)
	}
	return nil
}

// ReadHeader reads a channel message header. Type checking is the caller's
// responsibility: desynchronization is a protocol-level failure, not a
// framing one.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerPrefixSize+constants.NonceSize)
	if err := readFull(r, buf); err != nil {
		return Header{}, err
	}

	return Header{
		Type:  MessageType(buf[0]),
		Seq:   binary.BigEndian.Uint32(buf[1:]),
		Nonce: buf[headerPrefixSize:],
	}, nil
}

// WriteType writes a bare handshake header (type only; no sequence number or
// nonce is meaningful before a session exists).
func WriteType(w io.Writer, typ MessageType) error {
	if _, err := w.Write([]byte{byte(typ)}); err != nil {
		return serrors.NewProtocolError("framing", err)
	}
	return nil
}

// ReadType reads a bare handshake header.
func ReadType(r io.Reader) (MessageType, error) {
	var buf [1]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return MessageType(buf[0]), nil
}

// WriteField writes one length-prefixed field. Fields longer than
// MaxFieldLen are a protocol violation and are rejected before any bytes
// reach the wire.
func WriteField(w io.Writer, content []byte) error {
	if len(content) > constants.MaxFieldLen {
		return serrors.ErrFieldTooLarge
	}

	buf := make([]byte, constants.FieldLenSize+len(content))
	binary.BigEndian.PutUint16(buf, uint16(len(content)))
	copy(buf[constants.FieldLenSize:], content)

	if _, err := w.Write(buf); err != nil {
		return serrors.NewProtocolError("framing", err)
	}
	return nil
}

// ReadField reads one length-prefixed field. A declared length above
// MaxFieldLen fails with ErrFieldTooLarge before the content buffer is
// allocated.
func ReadField(r io.Reader) ([]byte, error) {
	lenBuf := make([]byte, constants.FieldLenSize)
	if err := readFull(r, lenBuf); err != nil {
		return nil, err
	}

	length := int(binary.BigEndian.Uint16(lenBuf))
	if length > constants.MaxFieldLen {
		return nil, serrors.ErrFieldTooLarge
	}

	content := make([]byte, length)
	if err := readFull(r, content); err != nil {
		return nil, err
	}
	return content, nil
}

// readFull reads exactly len(buf) bytes, mapping a mid-frame EOF to
// ErrTruncated and any other transport failure to a framing ProtocolError.
func readFull(r io.Reader, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || (errors.Is(err, io.EOF) && n > 0) {
		return serrors.ErrTruncated
	}
	return serrors.NewProtocolError("framing", err)
}
