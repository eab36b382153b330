package channel

import (
	"io"
	"math"
	"sync"

	serrors "strongbox/internal/errors"
	"strongbox/pkg/crypto"
	"strongbox/pkg/wire"
)

// SecureChannel is an established, mutually authenticated session over a byte
// stream. Every message is encrypted and authenticated with the session's
// AEAD; the plaintext header (type and sequence number) is covered by the
// authentication tag as associated data.
//
// Each direction carries an independent sequence counter starting at zero.
// The receiver requires each message's sequence number to equal its counter
// exactly, which rejects replay, reordering, and silent drops alike.
//
// Any failure poisons the channel: the failing call returns its own error,
// and every call after it returns ErrChannelClosed. There is no recovery;
// the caller drops the connection and handshakes again.
//
// A channel is safe for one sender and one receiver goroutine; the send and
// receive paths lock independently.
type SecureChannel struct {
	conn io.ReadWriter
	aead *crypto.AEAD
	peer string
	obs  Observer

	sendMu  sync.Mutex
	sendSeq uint32

	recvMu  sync.Mutex
	recvSeq uint32

	stateMu sync.Mutex
	closed  bool
}

func newSecureChannel(conn io.ReadWriter, aead *crypto.AEAD, peer string, obs Observer) *SecureChannel {
	return &SecureChannel{
		conn: conn,
		aead: aead,
		peer: peer,
		obs:  observerOrNoop(obs),
	}
}

// Peer returns the authenticated identity name of the remote side.
func (c *SecureChannel) Peer() string {
	return c.peer
}

// Send encrypts and writes one message. The payload is sealed under a fresh
// random nonce with the header as associated data; ciphertext and tag travel
// as separate length-prefixed fields.
func (c *SecureChannel) Send(msgType wire.MessageType, payload []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.isClosed() {
		return serrors.ErrChannelClosed
	}
	if c.sendSeq == math.MaxUint32 {
		return c.poison(serrors.ErrSequenceExhausted)
	}

	nonce, err := crypto.NewNonce()
	if err != nil {
		return c.poison(err)
	}

	header := wire.Header{Type: msgType, Seq: c.sendSeq, Nonce: nonce}
	ciphertext, tag, err := c.aead.Seal(nonce, payload, header.AAD())
	if err != nil {
		return c.poison(err)
	}

	if err := wire.WriteHeader(c.conn, msgType, c.sendSeq, nonce); err != nil {
		return c.poison(err)
	}
	if err := wire.WriteField(c.conn, ciphertext); err != nil {
		return c.poison(err)
	}
	if err := wire.WriteField(c.conn, tag); err != nil {
		return c.poison(err)
	}

	c.sendSeq++
	c.obs.OnMessageSent(msgType, len(ciphertext))
	return nil
}

// Receive reads, verifies, and decrypts one message, returning its type and
// plaintext. A sequence mismatch or tag failure poisons the channel.
func (c *SecureChannel) Receive() (wire.MessageType, []byte, error) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()

	if c.isClosed() {
		return 0, nil, serrors.ErrChannelClosed
	}
	if c.recvSeq == math.MaxUint32 {
		return 0, nil, c.poison(serrors.ErrSequenceExhausted)
	}

	header, err := wire.ReadHeader(c.conn)
	if err != nil {
		return 0, nil, c.poison(err)
	}
	if header.Seq != c.recvSeq {
		c.obs.OnSequenceViolation(c.peer, c.recvSeq, header.Seq)
		return 0, nil, c.poison(serrors.ErrSequenceMismatch)
	}

	ciphertext, err := wire.ReadField(c.conn)
	if err != nil {
		return 0, nil, c.poison(err)
	}
	tag, err := wire.ReadField(c.conn)
	if err != nil {
		return 0, nil, c.poison(err)
	}

	plaintext, err := c.aead.Open(header.Nonce, ciphertext, tag, header.AAD())
	if err != nil {
		c.obs.OnAuthFailure(c.peer)
		return 0, nil, c.poison(err)
	}

	c.recvSeq++
	c.obs.OnMessageReceived(header.Type, len(ciphertext))
	return header.Type, plaintext, nil
}

// Close marks the channel closed. It does not close the underlying stream;
// connection lifetime belongs to the caller.
func (c *SecureChannel) Close() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.obs.OnChannelClosed(c.peer, c.sendSeq, c.recvSeq)
	return nil
}

// poison closes the channel and returns err. Called with the relevant
// direction's mutex held.
func (c *SecureChannel) poison(err error) error {
	c.stateMu.Lock()
	wasClosed := c.closed
	c.closed = true
	c.stateMu.Unlock()

	if !wasClosed {
		c.obs.OnChannelClosed(c.peer, c.sendSeq, c.recvSeq)
	}
	return err
}

func (c *SecureChannel) isClosed() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.closed
}
