package channel

import (
	"time"

	"strongbox/pkg/wire"
)

// Observer receives lifecycle callbacks from handshakes and channels. All
// methods are called synchronously from the connection's goroutine, so
// implementations must be fast and must not block.
type Observer interface {
	// OnHandshakeComplete is called when a handshake finishes and a channel
	// is established. peer is the authenticated remote identity name.
	OnHandshakeComplete(peer string, duration time.Duration)

	// OnHandshakeFailed is called when a handshake aborts. reason is a short
	// stable label, not the error text.
	OnHandshakeFailed(reason string)

	// OnMessageSent is called after a channel message is written, with the
	// ciphertext length.
	OnMessageSent(msgType wire.MessageType, bytes int)

	// OnMessageReceived is called after a channel message is read and
	// authenticated, with the ciphertext length.
	OnMessageReceived(msgType wire.MessageType, bytes int)

	// OnAuthFailure is called when an AEAD tag or signature fails to verify.
	OnAuthFailure(peer string)

	// OnSequenceViolation is called when a received sequence number does not
	// equal the expected one.
	OnSequenceViolation(peer string, expected, got uint32)

	// OnChannelClosed is called once when a channel is closed or poisoned.
	OnChannelClosed(peer string, sent, received uint32)
}

// NoOpObserver is an Observer that does nothing. Embed it to implement only
// the callbacks you care about.
type NoOpObserver struct{}

func (NoOpObserver) OnHandshakeComplete(string, time.Duration)  {}
func (NoOpObserver) OnHandshakeFailed(string)                   {}
func (NoOpObserver) OnMessageSent(wire.MessageType, int)        {}
func (NoOpObserver) OnMessageReceived(wire.MessageType, int)    {}
func (NoOpObserver) OnAuthFailure(string)                       {}
func (NoOpObserver) OnSequenceViolation(string, uint32, uint32) {}
func (NoOpObserver) OnChannelClosed(string, uint32, uint32)     {}

// observerOrNoop returns obs, or a NoOpObserver if obs is nil, so callers
// never need a nil check before a callback.
func observerOrNoop(obs Observer) Observer {
	if obs == nil {
		return NoOpObserver{}
	}
	return obs
}
