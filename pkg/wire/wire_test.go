package wire_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
	"strongbox/pkg/wire"
)

// errWriter fails every write with the given error.
type errWriter struct{ err error }

func (w errWriter) Write([]byte) (int, error) { return 0, w.err }

func TestFieldRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("old.txt")},
		{"binary", []byte{0x00, 0xff, 0x10, 0x00}},
		{"max length", bytes.Repeat([]byte{'a'}, constants.MaxFieldLen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := wire.WriteField(&buf, tt.content); err != nil {
				t.Fatalf("WriteField failed: %v", err)
			}

			got, err := wire.ReadField(&buf)
			if err != nil {
				t.Fatalf("ReadField failed: %v", err)
			}
			if !bytes.Equal(got, tt.content) {
				t.Errorf("content mismatch: got %q, want %q", got, tt.content)
			}
		})
	}
}

func TestWriteFieldTooLarge(t *testing.T) {
	var buf bytes.Buffer
	content := bytes.Repeat([]byte{'x'}, constants.MaxFieldLen+1)

	err := wire.WriteField(&buf, content)
	if !errors.Is(err, serrors.ErrFieldTooLarge) {
		t.Errorf("got %v, want ErrFieldTooLarge", err)
	}
	if buf.Len() != 0 {
		t.Errorf("oversized field reached the wire: %d bytes written", buf.Len())
	}
}

func TestReadFieldDeclaredTooLarge(t *testing.T) {
	// A declared length above the ceiling must fail even though the stream
	// holds almost no data: the check happens before any content read.
	var buf bytes.Buffer
	lenBuf := make([]byte, constants.FieldLenSize)
	binary.BigEndian.PutUint16(lenBuf, uint16(constants.MaxFieldLen+1))
	buf.Write(lenBuf)

	_, err := wire.ReadField(&buf)
	if !errors.Is(err, serrors.ErrFieldTooLarge) {
		t.Errorf("got %v, want ErrFieldTooLarge", err)
	}
}

func TestReadFieldTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"partial length prefix", []byte{0x00}},
		{"length without content", []byte{0x00, 0x08}},
		{"partial content", []byte{0x00, 0x08, 'a', 'b', 'c'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wire.ReadField(bytes.NewReader(tt.data))
			if !errors.Is(err, serrors.ErrTruncated) {
				t.Errorf("got %v, want ErrTruncated", err)
			}
		})
	}
}

func TestReadFieldEmptyStream(t *testing.T) {
	// A clean EOF at a message boundary is not truncation; it surfaces as a
	// wrapped I/O error.
	_, err := wire.ReadField(bytes.NewReader(nil))
	if err == nil {
		t.Fatal("expected error on empty stream")
	}
	if errors.Is(err, serrors.ErrTruncated) {
		t.Error("clean EOF reported as truncation")
	}

	var perr *serrors.ProtocolError
	if !errors.As(err, &perr) {
		t.Errorf("got %T, want *ProtocolError", err)
	}
	if !errors.Is(err, io.EOF) {
		t.Error("underlying EOF not preserved in chain")
	}
}

func TestWriteFieldIOError(t *testing.T) {
	ioErr := errors.New("connection reset")
	err := wire.WriteField(errWriter{err: ioErr}, []byte("payload"))

	var perr *serrors.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want *ProtocolError", err)
	}
	if !errors.Is(err, ioErr) {
		t.Error("underlying I/O error not preserved in chain")
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	nonce := bytes.Repeat([]byte{0xab}, constants.NonceSize)

	var buf bytes.Buffer
	if err := wire.WriteHeader(&buf, wire.MsgRenameReq, 7, nonce); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}

	header, err := wire.ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if header.Type != wire.MsgRenameReq {
		t.Errorf("type mismatch: got %v, want %v", header.Type, wire.MsgRenameReq)
	}
	if header.Seq != 7 {
		t.Errorf("seq mismatch: got %d, want 7", header.Seq)
	}
	if !bytes.Equal(header.Nonce, nonce) {
		t.Error("nonce mismatch")
	}
}

func TestWriteHeaderRejectsBadNonce(t *testing.T) {
	var buf bytes.Buffer
	err := wire.WriteHeader(&buf, wire.MsgRenameReq, 0, []byte("short"))
	if !errors.Is(err, serrors.ErrInvalidNonce) {
		t.Errorf("got %v, want ErrInvalidNonce", err)
	}
}

func TestHeaderAAD(t *testing.T) {
	h := wire.Header{Type: wire.MsgDeleteReq, Seq: 0x01020304}
	want := []byte{byte(wire.MsgDeleteReq), 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(h.AAD(), want) {
		t.Errorf("AAD mismatch: got %x, want %x", h.AAD(), want)
	}
}

func TestTypeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := wire.WriteType(&buf, wire.MsgAuthStart); err != nil {
		t.Fatalf("WriteType failed: %v", err)
	}

	got, err := wire.ReadType(&buf)
	if err != nil {
		t.Fatalf("ReadType failed: %v", err)
	}
	if got != wire.MsgAuthStart {
		t.Errorf("got %v, want %v", got, wire.MsgAuthStart)
	}
}

func TestMessageTypeString(t *testing.T) {
	tests := []struct {
		mt   wire.MessageType
		want string
	}{
		{wire.MsgAuthStart, "AuthStart"},
		{wire.MsgAuthServerAns, "AuthServerAns"},
		{wire.MsgAuthClientFin, "AuthClientFin"},
		{wire.MsgRenameReq, "RenameReq"},
		{wire.MsgDeleteReq, "DeleteReq"},
		{wire.MsgLogoutReq, "LogoutReq"},
		{wire.MsgStatusAns, "StatusAns"},
		{wire.MessageType(0xee), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.mt.String(); got != tt.want {
			t.Errorf("MessageType(%#x).String() = %q, want %q", uint8(tt.mt), got, tt.want)
		}
	}
}
