package server

import (
	"sync"
	"time"
)

// IPConnLimiter tracks and limits the number of concurrent connections per IP.
type IPConnLimiter struct {
	mu          sync.Mutex
	connections map[string]int
	maxPerIP    int
}

// NewIPConnLimiter creates a new IPConnLimiter. A non-positive limit
// disables limiting.
func NewIPConnLimiter(maxPerIP int) *IPConnLimiter {
	return &IPConnLimiter{
		connections: make(map[string]int),
		maxPerIP:    maxPerIP,
	}
}

// Acquire checks whether the IP may establish a new connection, and if so
// counts it. Every successful Acquire must be paired with a Release.
func (l *IPConnLimiter) Acquire(ip string) bool {
	if l.maxPerIP <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connections[ip] >= l.maxPerIP {
		return false
	}
	l.connections[ip]++
	return true
}

// Release decrements the connection count for the IP.
func (l *IPConnLimiter) Release(ip string) {
	if l.maxPerIP <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connections[ip] > 0 {
		l.connections[ip]--
		if l.connections[ip] == 0 {
			delete(l.connections, ip) // Cleanup to prevent map growth
		}
	}
}

// HandshakeLimiter limits the rate of handshakes using a token bucket.
// Connections rejected here never reach the key exchange, so a flood of
// opens cannot drain the server's entropy or CPU on ephemeral keygen.
type HandshakeLimiter struct {
	mu         sync.Mutex
	rate       float64 // Tokens per second
	burst      int     // Max bucket size
	tokens     float64 // Current tokens
	lastRefill time.Time
}

// NewHandshakeLimiter creates a new HandshakeLimiter. A non-positive rate
// disables limiting.
func NewHandshakeLimiter(rate float64, burst int) *HandshakeLimiter {
	return &HandshakeLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available.
func (l *HandshakeLimiter) Allow() bool {
	if l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastRefill).Seconds()

	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
	l.lastRefill = now

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}
	return false
}
