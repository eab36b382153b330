// Package channel implements the authenticated key exchange and the secure
// channel it establishes.
//
// Handshake flow (three messages over a fresh byte stream):
//
//	Client                                  Server
//	  | AuthStart: username, clientEphPub    |
//	  |------------------------------------->|
//	  |                                      | lookup username
//	  |                                      | generate ephemeral
//	  | AuthServerAns: serverName,           |
//	  |   serverEphPub, certificate,         |
//	  |   sig(clientEph|serverEph|username)  |
//	  |<-------------------------------------|
//	  | verify certificate + signature       |
//	  | AuthClientFin:                       |
//	  |   sig(clientEph|serverEph|serverName)|
//	  |------------------------------------->|
//	  |                                      | verify against registry
//
// Both signatures cover the exact bytes that crossed the wire, prefixed with
// a direction-specific domain separator, so neither side's signature can be
// replayed in the other role. The session key binds the shared secret, both
// ephemeral public keys, and both identity names; a transcript disagreement
// surfaces as an authentication failure on the first channel message.
//
// Ephemeral private keys are discarded as soon as the shared secret exists,
// and the shared secret is zeroized once the session key is derived. Each
// connection performs exactly one handshake; there is no rekeying and no
// session resumption.
package channel

import (
	"io"
	"time"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
	"strongbox/pkg/crypto"
	"strongbox/pkg/identity"
	"strongbox/pkg/wire"
)

// State tracks handshake progress. Failed is terminal; a failed handshake
// never produces a channel and the underlying connection must be dropped.
type State int

const (
	// StateIdle is the initial state before any message is exchanged.
	StateIdle State = iota

	// StateAwaitingClientOpen is the server waiting for AuthStart.
	StateAwaitingClientOpen

	// StateAwaitingClientAuth is the server waiting for AuthClientFin.
	StateAwaitingClientAuth

	// StateEstablished means the handshake completed and a channel exists.
	StateEstablished

	// StateFailed is the terminal failure state.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingClientOpen:
		return "AwaitingClientOpen"
	case StateAwaitingClientAuth:
		return "AwaitingClientAuth"
	case StateEstablished:
		return "Established"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ClientConfig configures the client side of a handshake.
type ClientConfig struct {
	// Identity is the client's name and long-term signing key.
	Identity *identity.Local

	// ServerName is the identity the server must prove. The handshake fails
	// if the server announces a different name.
	ServerName string

	// ServerKey pins the server's long-term public key directly. Either
	// ServerKey or IssuerKey must be set.
	ServerKey crypto.VerifyKey

	// IssuerKey verifies the certificate the server presents. Used when the
	// server key is not pinned.
	IssuerKey crypto.VerifyKey

	// Suite selects the channel cipher. Zero means ChaCha20-Poly1305.
	Suite constants.CipherSuite

	// Observer receives lifecycle callbacks. May be nil.
	Observer Observer
}

// ServerConfig configures the server side of a handshake.
type ServerConfig struct {
	// Identity is the server's name, signing key, and certificate.
	Identity *identity.Local

	// Registry maps client usernames to their long-term public keys.
	Registry *identity.Registry

	// Suite selects the channel cipher. Zero means ChaCha20-Poly1305.
	Suite constants.CipherSuite

	// Observer receives lifecycle callbacks. May be nil.
	Observer Observer
}

func (c *ClientConfig) validate() error {
	if c.Identity == nil || c.ServerName == "" {
		return serrors.ErrInvalidState
	}
	if c.ServerKey == nil && c.IssuerKey == nil {
		return serrors.ErrInvalidState
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Identity == nil || c.Identity.Certificate() == nil || c.Registry == nil {
		return serrors.ErrInvalidState
	}
	return nil
}

func suiteOrDefault(suite constants.CipherSuite) (constants.CipherSuite, error) {
	if suite == 0 {
		return constants.CipherSuiteChaCha20Poly1305, nil
	}
	if !suite.IsSupported() {
		return 0, serrors.ErrUnsupportedCipherSuite
	}
	return suite, nil
}

// serverTranscript returns the bytes the server signs: both ephemeral public
// keys and the client username, exactly as they appeared on the wire.
func serverTranscript(clientEph, serverEph, username []byte) []byte {
	return transcript(constants.DomainSeparatorServerAuth, clientEph, serverEph, username)
}

// clientTranscript returns the bytes the client signs: both ephemeral public
// keys and the server name, exactly as they appeared on the wire.
func clientTranscript(clientEph, serverEph, serverName []byte) []byte {
	return transcript(constants.DomainSeparatorClientAuth, clientEph, serverEph, serverName)
}

func transcript(domain string, parts ...[]byte) []byte {
	size := len(domain)
	for _, p := range parts {
		size += len(p)
	}
	out := make([]byte, 0, size)
	out = append(out, domain...)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// HandshakeClient runs the client side of the handshake on conn and returns
// an established secure channel. On any error the connection is unusable and
// must be closed by the caller.
func HandshakeClient(conn io.ReadWriter, cfg ClientConfig) (*SecureChannel, error) {
	obs := observerOrNoop(cfg.Observer)
	start := time.Now()

	ch, err := handshakeClient(conn, cfg)
	if err != nil {
		obs.OnHandshakeFailed(failureReason(err))
		return nil, err
	}

	obs.OnHandshakeComplete(cfg.ServerName, time.Since(start))
	return ch, nil
}

func handshakeClient(conn io.ReadWriter, cfg ClientConfig) (*SecureChannel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	suite, err := suiteOrDefault(cfg.Suite)
	if err != nil {
		return nil, err
	}

	eph, err := crypto.GenerateEphemeralKeyPair()
	if err != nil {
		return nil, err
	}
	defer eph.Discard()

	clientEphWire := eph.PublicKeyBytes()
	usernameWire := []byte(cfg.Identity.Name())

	// AuthStart: username, client ephemeral public key.
	if err := wire.WriteType(conn, wire.MsgAuthStart); err != nil {
		return nil, err
	}
	if err := wire.WriteField(conn, usernameWire); err != nil {
		return nil, err
	}
	if err := wire.WriteField(conn, clientEphWire); err != nil {
		return nil, err
	}

	// AuthServerAns: server name, server ephemeral, certificate, signature.
	msgType, err := wire.ReadType(conn)
	if err != nil {
		return nil, err
	}
	if msgType != wire.MsgAuthServerAns {
		return nil, serrors.ErrUnexpectedMessage
	}

	serverNameWire, err := wire.ReadField(conn)
	if err != nil {
		return nil, err
	}
	if string(serverNameWire) != cfg.ServerName {
		return nil, serrors.ErrAuthenticationFailed
	}

	serverEphWire, err := wire.ReadField(conn)
	if err != nil {
		return nil, err
	}
	serverEphPub, err := crypto.ParsePeerPublicKey(serverEphWire)
	if err != nil {
		return nil, err
	}

	certWire, err := wire.ReadField(conn)
	if err != nil {
		return nil, err
	}
	serverSig, err := wire.ReadField(conn)
	if err != nil {
		return nil, err
	}

	serverKey, err := resolveServerKey(cfg, certWire)
	if err != nil {
		return nil, err
	}

	if !crypto.Verify(serverKey, serverTranscript(clientEphWire, serverEphWire, usernameWire), serverSig) {
		return nil, serrors.ErrAuthenticationFailed
	}

	shared, err := eph.SharedSecret(serverEphPub)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(shared)
	eph.Discard()

	sessionKey, err := crypto.DeriveSessionKey(shared, clientEphWire, serverEphWire, usernameWire, serverNameWire)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(sessionKey)

	// AuthClientFin: client's transcript signature.
	clientSig, err := cfg.Identity.Sign(clientTranscript(clientEphWire, serverEphWire, serverNameWire))
	if err != nil {
		return nil, err
	}
	if err := wire.WriteType(conn, wire.MsgAuthClientFin); err != nil {
		return nil, err
	}
	if err := wire.WriteField(conn, clientSig); err != nil {
		return nil, err
	}

	aead, err := crypto.NewAEAD(suite, sessionKey)
	if err != nil {
		return nil, err
	}

	return newSecureChannel(conn, aead, cfg.ServerName, cfg.Observer), nil
}

// resolveServerKey determines which public key verifies the server's
// transcript signature. A pinned key wins; otherwise the presented
// certificate must verify against the trusted issuer and carry the expected
// server name.
func resolveServerKey(cfg ClientConfig, certWire []byte) (crypto.VerifyKey, error) {
	if cfg.ServerKey != nil {
		return cfg.ServerKey, nil
	}

	cert, err := identity.ParseCertificate(certWire)
	if err != nil {
		return nil, err
	}
	if cert.Name != cfg.ServerName {
		return nil, serrors.ErrInvalidCertificate
	}
	if err := cert.Verify(cfg.IssuerKey); err != nil {
		return nil, err
	}
	return cert.PublicKey, nil
}

// HandshakeServer runs the server side of the handshake on conn. On success
// it returns the authenticated client username and the established channel.
// On any error the connection is unusable and must be closed by the caller.
func HandshakeServer(conn io.ReadWriter, cfg ServerConfig) (string, *SecureChannel, error) {
	obs := observerOrNoop(cfg.Observer)
	start := time.Now()

	hs := &serverHandshake{cfg: cfg, state: StateAwaitingClientOpen}
	username, ch, err := hs.run(conn)
	if err != nil {
		hs.state = StateFailed
		obs.OnHandshakeFailed(failureReason(err))
		return "", nil, err
	}

	hs.state = StateEstablished
	obs.OnHandshakeComplete(username, time.Since(start))
	return username, ch, nil
}

type serverHandshake struct {
	cfg   ServerConfig
	state State
}

func (hs *serverHandshake) run(conn io.ReadWriter) (string, *SecureChannel, error) {
	if err := hs.cfg.validate(); err != nil {
		return "", nil, err
	}
	suite, err := suiteOrDefault(hs.cfg.Suite)
	if err != nil {
		return "", nil, err
	}

	// AuthStart: username, client ephemeral public key. The username is
	// checked against the registry before any ephemeral key is generated, so
	// unknown users cost nothing beyond a map lookup.
	msgType, err := wire.ReadType(conn)
	if err != nil {
		return "", nil, err
	}
	if msgType != wire.MsgAuthStart {
		return "", nil, serrors.ErrUnexpectedMessage
	}

	usernameWire, err := wire.ReadField(conn)
	if err != nil {
		return "", nil, err
	}
	if len(usernameWire) == 0 || len(usernameWire) > constants.UsernameMaxLen {
		return "", nil, serrors.ErrUnknownUser
	}
	username := string(usernameWire)

	clientKey, ok := hs.cfg.Registry.Lookup(username)
	if !ok {
		return "", nil, serrors.ErrUnknownUser
	}

	clientEphWire, err := wire.ReadField(conn)
	if err != nil {
		return "", nil, err
	}
	clientEphPub, err := crypto.ParsePeerPublicKey(clientEphWire)
	if err != nil {
		return "", nil, err
	}

	eph, err := crypto.GenerateEphemeralKeyPair()
	if err != nil {
		return "", nil, err
	}
	defer eph.Discard()
	serverEphWire := eph.PublicKeyBytes()

	shared, err := eph.SharedSecret(clientEphPub)
	if err != nil {
		return "", nil, err
	}
	defer crypto.Zeroize(shared)
	eph.Discard()

	serverNameWire := []byte(hs.cfg.Identity.Name())
	sessionKey, err := crypto.DeriveSessionKey(shared, clientEphWire, serverEphWire, usernameWire, serverNameWire)
	if err != nil {
		return "", nil, err
	}
	defer crypto.Zeroize(sessionKey)

	serverSig, err := hs.cfg.Identity.Sign(serverTranscript(clientEphWire, serverEphWire, usernameWire))
	if err != nil {
		return "", nil, err
	}

	// AuthServerAns: server name, server ephemeral, certificate, signature.
	if err := wire.WriteType(conn, wire.MsgAuthServerAns); err != nil {
		return "", nil, err
	}
	if err := wire.WriteField(conn, serverNameWire); err != nil {
		return "", nil, err
	}
	if err := wire.WriteField(conn, serverEphWire); err != nil {
		return "", nil, err
	}
	if err := wire.WriteField(conn, hs.cfg.Identity.Certificate().Marshal()); err != nil {
		return "", nil, err
	}
	if err := wire.WriteField(conn, serverSig); err != nil {
		return "", nil, err
	}

	// AuthClientFin: verify the client's transcript signature against its
	// registered long-term key. The session is mutual only after this check.
	hs.state = StateAwaitingClientAuth

	msgType, err = wire.ReadType(conn)
	if err != nil {
		return "", nil, err
	}
	if msgType != wire.MsgAuthClientFin {
		return "", nil, serrors.ErrUnexpectedMessage
	}

	clientSig, err := wire.ReadField(conn)
	if err != nil {
		return "", nil, err
	}
	if !crypto.Verify(clientKey, clientTranscript(clientEphWire, serverEphWire, serverNameWire), clientSig) {
		return "", nil, serrors.ErrAuthenticationFailed
	}

	aead, err := crypto.NewAEAD(suite, sessionKey)
	if err != nil {
		return "", nil, err
	}

	return username, newSecureChannel(conn, aead, username, hs.cfg.Observer), nil
}

// failureReason maps an error to a short stable label for observers.
func failureReason(err error) string {
	switch {
	case serrors.Is(err, serrors.ErrUnknownUser):
		return "unknown_user"
	case serrors.Is(err, serrors.ErrMalformedKey):
		return "malformed_key"
	case serrors.Is(err, serrors.ErrAuthenticationFailed):
		return "authentication_failed"
	case serrors.Is(err, serrors.ErrInvalidCertificate):
		return "invalid_certificate"
	case serrors.Is(err, serrors.ErrUnexpectedMessage):
		return "unexpected_message"
	case serrors.Is(err, serrors.ErrTruncated):
		return "truncated"
	default:
		return "io_error"
	}
}
