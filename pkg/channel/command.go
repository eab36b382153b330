package channel

import (
	"bytes"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
	"strongbox/pkg/wire"
)

// Command describes one encrypted application message: a type plus an
// ordered list of fixed field widths. Fields are zero-padded to their width
// before encryption, so the ciphertext length of a given command is constant
// and never leaks content length. Adding a command is a matter of declaring
// its type and widths; the send and receive paths are generic.
type Command struct {
	Type   wire.MessageType
	Widths []int
}

// The command set. RenameReq, DeleteReq, and LogoutReq flow client to
// server; StatusAns is the server's reply to every request.
var (
	CmdRename = Command{Type: wire.MsgRenameReq, Widths: []int{constants.FilenameMaxLen, constants.FilenameMaxLen}}
	CmdDelete = Command{Type: wire.MsgDeleteReq, Widths: []int{constants.FilenameMaxLen}}
	CmdLogout = Command{Type: wire.MsgLogoutReq}
	CmdStatus = Command{Type: wire.MsgStatusAns, Widths: []int{constants.StatusLen}}
)

// requests holds the commands a server accepts, in dispatch order.
var requests = []Command{CmdRename, CmdDelete, CmdLogout}

// CommandFor returns the request command with the given message type.
func CommandFor(msgType wire.MessageType) (Command, bool) {
	for _, cmd := range requests {
		if cmd.Type == msgType {
			return cmd, true
		}
	}
	return Command{}, false
}

// payloadSize returns the fixed plaintext size of the command.
func (c Command) payloadSize() int {
	size := 0
	for _, w := range c.Widths {
		size += w
	}
	return size
}

// PadField zero-pads content to width. Content longer than the width, or
// containing a NUL byte (which the unpadder would interpret as padding), is
// rejected.
func PadField(content string, width int) ([]byte, error) {
	if len(content) > width {
		return nil, serrors.ErrPayloadTooLarge
	}
	if bytes.IndexByte([]byte(content), 0) >= 0 {
		return nil, serrors.ErrPayloadTooLarge
	}

	field := make([]byte, width)
	copy(field, content)
	return field, nil
}

// UnpadField recovers the content of a fixed-width field by trimming at the
// first NUL byte.
func UnpadField(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}

// SendCommand pads the fields to the command's fixed widths and sends them
// as one encrypted message.
func SendCommand(ch *SecureChannel, cmd Command, fields ...string) error {
	if len(fields) != len(cmd.Widths) {
		return serrors.ErrPayloadTooLarge
	}

	payload := make([]byte, 0, cmd.payloadSize())
	for i, content := range fields {
		field, err := PadField(content, cmd.Widths[i])
		if err != nil {
			return err
		}
		payload = append(payload, field...)
	}

	return ch.Send(cmd.Type, payload)
}

// ReceiveCommand receives one message and requires it to be the given
// command. A different message type or a payload of the wrong size is a
// protocol violation.
func ReceiveCommand(ch *SecureChannel, cmd Command) ([]string, error) {
	msgType, payload, err := ch.Receive()
	if err != nil {
		return nil, err
	}
	if msgType != cmd.Type {
		return nil, serrors.ErrUnexpectedMessage
	}
	return splitFields(cmd, payload)
}

// ReceiveRequest receives one message and matches it against the request
// command set. Used by the server loop, which does not know which command
// arrives next.
func ReceiveRequest(ch *SecureChannel) (Command, []string, error) {
	msgType, payload, err := ch.Receive()
	if err != nil {
		return Command{}, nil, err
	}

	cmd, ok := CommandFor(msgType)
	if !ok {
		return Command{}, nil, serrors.ErrUnexpectedMessage
	}

	fields, err := splitFields(cmd, payload)
	if err != nil {
		return Command{}, nil, err
	}
	return cmd, fields, nil
}

func splitFields(cmd Command, payload []byte) ([]string, error) {
	if len(payload) != cmd.payloadSize() {
		return nil, serrors.ErrPayloadTooLarge
	}

	fields := make([]string, len(cmd.Widths))
	offset := 0
	for i, w := range cmd.Widths {
		fields[i] = UnpadField(payload[offset : offset+w])
		offset += w
	}
	return fields, nil
}
