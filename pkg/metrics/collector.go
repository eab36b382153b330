// Package metrics provides the observability layer for the strongbox secure
// command channel: structured logging, a metrics collector, OpenTelemetry
// tracing, and a channel observer that feeds all three.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates counters across all sessions of a process.
// All methods are safe for concurrent use.
type Collector struct {
	// Session counters
	sessionsActive atomic.Uint64
	sessionsTotal  atomic.Uint64
	sessionsFailed atomic.Uint64

	// Traffic counters
	messagesSent  atomic.Uint64
	messagesRecv  atomic.Uint64
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64

	// Security counters
	authFailures       atomic.Uint64
	sequenceViolations atomic.Uint64
	unknownUsers       atomic.Uint64

	// Handshake latency accumulators
	handshakeCount atomic.Uint64
	handshakeNanos atomic.Uint64

	createdAt time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{createdAt: time.Now()}
}

// SessionStarted increments the active and total session counters.
func (c *Collector) SessionStarted() {
	c.sessionsActive.Add(1)
	c.sessionsTotal.Add(1)
}

// SessionEnded decrements the active session counter.
func (c *Collector) SessionEnded() {
	for {
		current := c.sessionsActive.Load()
		if current == 0 {
			return
		}
		if c.sessionsActive.CompareAndSwap(current, current-1) {
			return
		}
	}
}

// SessionFailed records a failed handshake attempt.
func (c *Collector) SessionFailed() {
	c.sessionsFailed.Add(1)
}

// RecordHandshake records a completed handshake's duration.
func (c *Collector) RecordHandshake(d time.Duration) {
	c.handshakeCount.Add(1)
	c.handshakeNanos.Add(uint64(d.Nanoseconds()))
}

// RecordMessageSent records one sent message and its ciphertext size.
func (c *Collector) RecordMessageSent(bytes int) {
	c.messagesSent.Add(1)
	c.bytesSent.Add(uint64(bytes))
}

// RecordMessageReceived records one received message and its ciphertext size.
func (c *Collector) RecordMessageReceived(bytes int) {
	c.messagesRecv.Add(1)
	c.bytesReceived.Add(uint64(bytes))
}

// RecordAuthFailure increments the authentication failure counter.
func (c *Collector) RecordAuthFailure() {
	c.authFailures.Add(1)
}

// RecordSequenceViolation increments the replay/reorder counter.
func (c *Collector) RecordSequenceViolation() {
	c.sequenceViolations.Add(1)
}

// RecordUnknownUser increments the unknown-user rejection counter.
func (c *Collector) RecordUnknownUser() {
	c.unknownUsers.Add(1)
}

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	Timestamp time.Time
	Uptime    time.Duration

	SessionsActive uint64
	SessionsTotal  uint64
	SessionsFailed uint64

	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64

	AuthFailures       uint64
	SequenceViolations uint64
	UnknownUsers       uint64

	HandshakeCount   uint64
	HandshakeAverage time.Duration
}

// Snapshot returns a point-in-time snapshot of all counters.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Timestamp:          time.Now(),
		Uptime:             time.Since(c.createdAt),
		SessionsActive:     c.sessionsActive.Load(),
		SessionsTotal:      c.sessionsTotal.Load(),
		SessionsFailed:     c.sessionsFailed.Load(),
		MessagesSent:       c.messagesSent.Load(),
		MessagesReceived:   c.messagesRecv.Load(),
		BytesSent:          c.bytesSent.Load(),
		BytesReceived:      c.bytesReceived.Load(),
		AuthFailures:       c.authFailures.Load(),
		SequenceViolations: c.sequenceViolations.Load(),
		UnknownUsers:       c.unknownUsers.Load(),
		HandshakeCount:     c.handshakeCount.Load(),
	}
	if s.HandshakeCount > 0 {
		s.HandshakeAverage = time.Duration(c.handshakeNanos.Load() / s.HandshakeCount)
	}
	return s
}

// Reset clears all counters. Useful in tests.
func (c *Collector) Reset() {
	c.sessionsActive.Store(0)
	c.sessionsTotal.Store(0)
	c.sessionsFailed.Store(0)
	c.messagesSent.Store(0)
	c.messagesRecv.Store(0)
	c.bytesSent.Store(0)
	c.bytesReceived.Store(0)
	c.authFailures.Store(0)
	c.sequenceViolations.Store(0)
	c.unknownUsers.Store(0)
	c.handshakeCount.Store(0)
	c.handshakeNanos.Store(0)
	c.createdAt = time.Now()
}

// --- Global Collector ---

var (
	globalCollector     *Collector
	globalCollectorOnce sync.Once
)

// Global returns the process-wide metrics collector.
func Global() *Collector {
	globalCollectorOnce.Do(func() {
		globalCollector = NewCollector()
	})
	return globalCollector
}
