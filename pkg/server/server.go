// Package server runs the accepting side of the command channel: a listener
// loop, per-connection goroutines, and rate limits in front of the handshake.
//
// The identity registry is built once at startup and shared read-only across
// all connections; no session state outlives its connection.
package server

import (
	"context"
	"errors"
	"net"
	"time"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
	"strongbox/pkg/channel"
	"strongbox/pkg/identity"
	"strongbox/pkg/metrics"
	"strongbox/pkg/wire"
)

// Config configures a Server.
type Config struct {
	// Identity is the server's name, signing key, and certificate.
	Identity *identity.Local

	// Registry maps client usernames to their long-term public keys.
	Registry *identity.Registry

	// Handler executes authenticated commands.
	Handler Handler

	// Suite selects the channel cipher. Zero means ChaCha20-Poly1305.
	Suite constants.CipherSuite

	// MaxConnsPerIP caps concurrent connections per client IP.
	// Non-positive disables the cap.
	MaxConnsPerIP int

	// HandshakeRate and HandshakeBurst configure the handshake token bucket.
	// A non-positive rate disables it.
	HandshakeRate  float64
	HandshakeBurst int

	// HandshakeTimeout bounds the time from accept to an established
	// channel. Zero means DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// Observer receives channel lifecycle callbacks. May be nil.
	Observer channel.Observer

	// Logger for connection events. Nil means the global logger.
	Logger *metrics.Logger

	// Tracer for handshake and command spans. Nil means the global tracer.
	Tracer metrics.Tracer
}

// Defaults applied by New.
const (
	DefaultMaxConnsPerIP    = 16
	DefaultHandshakeRate    = 10.0
	DefaultHandshakeBurst   = 20
	DefaultHandshakeTimeout = 30 * time.Second
)

// DefaultConfig returns a Config with production defaults. The caller still
// must set Identity, Registry, and Handler.
func DefaultConfig() Config {
	return Config{
		MaxConnsPerIP:    DefaultMaxConnsPerIP,
		HandshakeRate:    DefaultHandshakeRate,
		HandshakeBurst:   DefaultHandshakeBurst,
		HandshakeTimeout: DefaultHandshakeTimeout,
	}
}

// Server accepts connections, authenticates each one with a handshake, and
// serves commands until the client logs out or the connection fails.
type Server struct {
	cfg       Config
	ipLimiter *IPConnLimiter
	hsLimiter *HandshakeLimiter
	log       *metrics.Logger
	tracer    metrics.Tracer
}

// New validates cfg and creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Identity == nil || cfg.Identity.Certificate() == nil || cfg.Registry == nil || cfg.Handler == nil {
		return nil, serrors.ErrInvalidState
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}

	log := cfg.Logger
	if log == nil {
		log = metrics.GetLogger()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = metrics.GetTracer()
	}

	return &Server{
		cfg:       cfg,
		ipLimiter: NewIPConnLimiter(cfg.MaxConnsPerIP),
		hsLimiter: NewHandshakeLimiter(cfg.HandshakeRate, cfg.HandshakeBurst),
		log:       log.Named("server"),
		tracer:    tracer,
	}, nil
}

// Serve accepts connections on ln until ctx is cancelled or the listener
// fails. Each accepted connection is served on its own goroutine.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("listening", metrics.Fields{
		"addr":  ln.Addr().String(),
		"users": s.cfg.Registry.Len(),
	})

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return serrors.NewProtocolError("accept", err)
		}

		ip := remoteIP(conn)
		if !s.hsLimiter.Allow() {
			s.log.Warn("handshake rate exceeded", metrics.Fields{"ip": ip})
			conn.Close()
			continue
		}
		if !s.ipLimiter.Acquire(ip) {
			s.log.Warn("per-ip connection limit exceeded", metrics.Fields{"ip": ip})
			conn.Close()
			continue
		}

		go func() {
			defer s.ipLimiter.Release(ip)
			defer conn.Close()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	ctx, endSpan := s.tracer.StartSpan(ctx, metrics.SpanHandshakeServer,
		metrics.WithSpanKind(metrics.SpanKindServer))

	conn.SetDeadline(time.Now().Add(s.cfg.HandshakeTimeout))
	username, ch, err := channel.HandshakeServer(conn, channel.ServerConfig{
		Identity: s.cfg.Identity,
		Registry: s.cfg.Registry,
		Suite:    s.cfg.Suite,
		Observer: s.cfg.Observer,
	})
	endSpan(err)
	if err != nil {
		s.log.Warn("handshake failed", metrics.Fields{
			"remote": conn.RemoteAddr().String(),
			"error":  err.Error(),
		})
		return
	}
	conn.SetDeadline(time.Time{})
	defer ch.Close()

	log := s.log.With(metrics.Fields{"user": username})
	log.Info("session established")

	for {
		if ctx.Err() != nil {
			return
		}

		cmd, fields, err := channel.ReceiveRequest(ch)
		if err != nil {
			if !errors.Is(err, serrors.ErrChannelClosed) {
				log.Warn("session ended", metrics.Fields{"error": err.Error()})
			}
			return
		}

		if cmd.Type == wire.MsgLogoutReq {
			s.reply(ch, "OK")
			log.Info("logout")
			return
		}

		_, endCmd := s.tracer.StartSpan(ctx, metrics.SpanCommandHandle,
			metrics.WithAttributes(map[string]interface{}{"command": cmd.Type.String()}))
		status := s.execute(username, cmd, fields)
		endCmd(nil)

		if err := s.reply(ch, status); err != nil {
			return
		}
	}
}

// execute dispatches a request to the handler and maps the outcome to a
// fixed-width status string.
func (s *Server) execute(username string, cmd channel.Command, fields []string) string {
	var err error
	switch cmd.Type {
	case wire.MsgRenameReq:
		err = s.cfg.Handler.Rename(username, fields[0], fields[1])
	case wire.MsgDeleteReq:
		err = s.cfg.Handler.Delete(username, fields[0])
	default:
		err = serrors.ErrUnexpectedMessage
	}

	if err != nil {
		return statusFor(err)
	}
	return "OK"
}

func (s *Server) reply(ch *channel.SecureChannel, status string) error {
	return channel.SendCommand(ch, channel.CmdStatus, status)
}

// statusFor maps an execution error to a short status label. The label is
// stable; clients may match on it.
func statusFor(err error) string {
	switch {
	case errors.Is(err, serrors.ErrInvalidFilename):
		return "ERR:invalid-filename"
	default:
		return "ERR:operation-failed"
	}
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
