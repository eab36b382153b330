package metrics

import (
	"time"

	"strongbox/pkg/channel"
	"strongbox/pkg/wire"
)

// ChannelObserver implements channel.Observer, feeding the collector and the
// logger. One instance can be shared across all connections.
type ChannelObserver struct {
	collector *Collector
	log       *Logger
}

var _ channel.Observer = (*ChannelObserver)(nil)

// NewChannelObserver creates an observer backed by the given collector and
// logger. A nil collector uses the global one; a nil logger discards output.
func NewChannelObserver(collector *Collector, log *Logger) *ChannelObserver {
	if collector == nil {
		collector = Global()
	}
	if log == nil {
		log = NullLogger()
	}
	return &ChannelObserver{collector: collector, log: log.Named("channel")}
}

// OnHandshakeComplete records a successful handshake.
func (o *ChannelObserver) OnHandshakeComplete(peer string, duration time.Duration) {
	o.collector.SessionStarted()
	o.collector.RecordHandshake(duration)
	o.log.Info("handshake complete", Fields{"peer": peer, "duration": duration})
}

// OnHandshakeFailed records a failed handshake.
func (o *ChannelObserver) OnHandshakeFailed(reason string) {
	o.collector.SessionFailed()
	if reason == "unknown_user" {
		o.collector.RecordUnknownUser()
	}
	o.log.Warn("handshake failed", Fields{"reason": reason})
}

// OnMessageSent records an encrypted message write.
func (o *ChannelObserver) OnMessageSent(msgType wire.MessageType, bytes int) {
	o.collector.RecordMessageSent(bytes)
	o.log.Debug("message sent", Fields{"type": msgType.String(), "bytes": bytes})
}

// OnMessageReceived records an authenticated message read.
func (o *ChannelObserver) OnMessageReceived(msgType wire.MessageType, bytes int) {
	o.collector.RecordMessageReceived(bytes)
	o.log.Debug("message received", Fields{"type": msgType.String(), "bytes": bytes})
}

// OnAuthFailure records a tag or signature verification failure.
func (o *ChannelObserver) OnAuthFailure(peer string) {
	o.collector.RecordAuthFailure()
	o.log.Warn("authentication failure", Fields{"peer": peer})
}

// OnSequenceViolation records a replayed or reordered message.
func (o *ChannelObserver) OnSequenceViolation(peer string, expected, got uint32) {
	o.collector.RecordSequenceViolation()
	o.log.Warn("sequence violation", Fields{"peer": peer, "expected": expected, "got": got})
}

// OnChannelClosed records the end of a session.
func (o *ChannelObserver) OnChannelClosed(peer string, sent, received uint32) {
	o.collector.SessionEnded()
	o.log.Info("channel closed", Fields{"peer": peer, "sent": sent, "received": received})
}
