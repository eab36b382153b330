package metrics_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"strongbox/pkg/metrics"
	"strongbox/pkg/wire"
)

func TestChannelObserverFeedsCollector(t *testing.T) {
	c := metrics.NewCollector()
	obs := metrics.NewChannelObserver(c, metrics.NullLogger())

	obs.OnHandshakeComplete("alice", 15*time.Millisecond)
	obs.OnMessageSent(wire.MsgRenameReq, 274)
	obs.OnMessageReceived(wire.MsgStatusAns, 82)
	obs.OnAuthFailure("alice")
	obs.OnSequenceViolation("alice", 3, 2)
	obs.OnChannelClosed("alice", 1, 1)
	obs.OnHandshakeFailed("unknown_user")

	s := c.Snapshot()
	if s.SessionsTotal != 1 || s.SessionsActive != 0 {
		t.Errorf("sessions: total %d, active %d", s.SessionsTotal, s.SessionsActive)
	}
	if s.SessionsFailed != 1 || s.UnknownUsers != 1 {
		t.Errorf("failures: %d failed, %d unknown users", s.SessionsFailed, s.UnknownUsers)
	}
	if s.MessagesSent != 1 || s.BytesSent != 274 {
		t.Errorf("sent: %d msgs / %d bytes", s.MessagesSent, s.BytesSent)
	}
	if s.AuthFailures != 1 || s.SequenceViolations != 1 {
		t.Errorf("security: %d auth failures, %d sequence violations", s.AuthFailures, s.SequenceViolations)
	}
	if s.HandshakeCount != 1 {
		t.Errorf("HandshakeCount = %d, want 1", s.HandshakeCount)
	}
}

func TestChannelObserverLogs(t *testing.T) {
	var buf bytes.Buffer
	obs := metrics.NewChannelObserver(metrics.NewCollector(), metrics.TestLogger(&buf))

	obs.OnHandshakeComplete("alice", time.Millisecond)
	obs.OnSequenceViolation("alice", 5, 3)

	out := buf.String()
	if !strings.Contains(out, "handshake complete") || !strings.Contains(out, "peer=alice") {
		t.Errorf("handshake log missing: %s", out)
	}
	if !strings.Contains(out, "sequence violation") || !strings.Contains(out, "expected=5") {
		t.Errorf("violation log missing: %s", out)
	}
}

func TestNoOpTracer(t *testing.T) {
	base := context.Background()
	ctx, end := metrics.NoOpTracer{}.StartSpan(base, "x")
	if ctx != base {
		t.Error("context changed")
	}
	end(nil) // must not panic
}
