package metrics_test

import (
	"sync"
	"testing"
	"time"

	"strongbox/pkg/metrics"
)

func TestCollectorSessionCounters(t *testing.T) {
	c := metrics.NewCollector()

	c.SessionStarted()
	c.SessionStarted()
	c.SessionEnded()
	c.SessionFailed()

	s := c.Snapshot()
	if s.SessionsActive != 1 {
		t.Errorf("SessionsActive = %d, want 1", s.SessionsActive)
	}
	if s.SessionsTotal != 2 {
		t.Errorf("SessionsTotal = %d, want 2", s.SessionsTotal)
	}
	if s.SessionsFailed != 1 {
		t.Errorf("SessionsFailed = %d, want 1", s.SessionsFailed)
	}
}

func TestCollectorSessionEndedNeverNegative(t *testing.T) {
	c := metrics.NewCollector()
	c.SessionEnded()
	c.SessionEnded()

	if got := c.Snapshot().SessionsActive; got != 0 {
		t.Errorf("SessionsActive = %d, want 0", got)
	}
}

func TestCollectorTraffic(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordMessageSent(100)
	c.RecordMessageSent(50)
	c.RecordMessageReceived(75)

	s := c.Snapshot()
	if s.MessagesSent != 2 || s.BytesSent != 150 {
		t.Errorf("sent: %d msgs / %d bytes, want 2 / 150", s.MessagesSent, s.BytesSent)
	}
	if s.MessagesReceived != 1 || s.BytesReceived != 75 {
		t.Errorf("received: %d msgs / %d bytes, want 1 / 75", s.MessagesReceived, s.BytesReceived)
	}
}

func TestCollectorHandshakeAverage(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordHandshake(10 * time.Millisecond)
	c.RecordHandshake(30 * time.Millisecond)

	s := c.Snapshot()
	if s.HandshakeCount != 2 {
		t.Errorf("HandshakeCount = %d, want 2", s.HandshakeCount)
	}
	if s.HandshakeAverage != 20*time.Millisecond {
		t.Errorf("HandshakeAverage = %v, want 20ms", s.HandshakeAverage)
	}
}

func TestCollectorConcurrentUpdates(t *testing.T) {
	c := metrics.NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordMessageSent(1)
				c.RecordAuthFailure()
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.MessagesSent != 1000 {
		t.Errorf("MessagesSent = %d, want 1000", s.MessagesSent)
	}
	if s.AuthFailures != 1000 {
		t.Errorf("AuthFailures = %d, want 1000", s.AuthFailures)
	}
}

func TestCollectorReset(t *testing.T) {
	c := metrics.NewCollector()
	c.SessionStarted()
	c.RecordMessageSent(10)
	c.RecordSequenceViolation()
	c.Reset()

	s := c.Snapshot()
	if s.SessionsTotal != 0 || s.MessagesSent != 0 || s.SequenceViolations != 0 {
		t.Error("counters survived Reset")
	}
}
