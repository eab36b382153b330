// Package strongbox provides a mutually authenticated, forward-secure command
// channel between a client and a server over any byte stream.
//
// A connection begins with an ephemeral X25519 key exchange in which both
// parties prove possession of their long-term Ed25519 identity keys by signing
// the handshake transcript. The derived session key then protects an arbitrary
// number of fixed-format application commands with ChaCha20-Poly1305, strict
// per-direction sequence counters, and fresh per-message nonces.
//
// # Quick Start
//
//	import (
//		"strongbox/pkg/channel"
//		"strongbox/pkg/client"
//		"strongbox/pkg/server"
//	)
//
//	// Server: cfg carries the identity, registry, and command handler.
//	srv, _ := server.New(cfg)
//	srv.Serve(ctx, listener)
//
//	// Client
//	c, _ := client.Dial(ctx, addr, channel.ClientConfig{
//		Identity:   local,
//		ServerName: "server",
//		ServerKey:  pinnedKey,
//	})
//	status, _ := c.Rename("old.txt", "new.txt")
//
// # Package Structure
//
//   - pkg/wire: length-prefixed field and message-header framing
//   - pkg/crypto: ECDH, signatures, KDF, AEAD, secure randomness
//   - pkg/identity: long-term keys, certificates, and the user registry
//   - pkg/channel: the handshake engine and the secure channel
//   - pkg/server: connection serving with per-IP and handshake rate limits
//   - pkg/metrics: structured logging, tracing, and protocol counters
//   - internal/constants: protocol parameters and wire-frozen sizes
//   - internal/errors: sentinel error types for protocol failures
//
// # Security Properties
//
//   - Forward secrecy: fresh X25519 key pair per connection, never reused
//   - Mutual authentication: both transcripts signed with long-term Ed25519 keys
//   - Authenticated encryption: ChaCha20-Poly1305 or AES-256-GCM with the
//     message header as associated data
//   - Replay protection: strict per-direction sequence counters
//   - Length-hiding: command fields padded to fixed widths before encryption
package strongbox
