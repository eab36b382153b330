// Package client provides the connecting side of the command channel: dial,
// handshake, issue commands, log out.
package client

import (
	"context"
	"net"

	serrors "strongbox/internal/errors"
	"strongbox/pkg/channel"
	"strongbox/pkg/metrics"
)

// Client is an authenticated session with a server. Not safe for concurrent
// use; the protocol is strictly request/response.
type Client struct {
	conn net.Conn
	ch   *channel.SecureChannel
	log  *metrics.Logger
}

// Dial connects to addr, runs the handshake, and returns an authenticated
// client. The context bounds connection establishment only.
func Dial(ctx context.Context, addr string, cfg channel.ClientConfig) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, serrors.NewProtocolError("dial", err)
	}

	_, endSpan := metrics.StartSpan(ctx, metrics.SpanHandshakeClient,
		metrics.WithSpanKind(metrics.SpanKindClient))
	ch, err := channel.HandshakeClient(conn, cfg)
	endSpan(err)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Client{
		conn: conn,
		ch:   ch,
		log:  metrics.GetLogger().Named("client"),
	}, nil
}

// Rename asks the server to rename oldName to newName and returns the
// server's status string.
func (c *Client) Rename(oldName, newName string) (string, error) {
	return c.roundTrip(channel.CmdRename, oldName, newName)
}

// Delete asks the server to delete the named file and returns the server's
// status string.
func (c *Client) Delete(name string) (string, error) {
	return c.roundTrip(channel.CmdDelete, name)
}

// Logout ends the session cleanly. The client is unusable afterwards.
func (c *Client) Logout() (string, error) {
	status, err := c.roundTrip(channel.CmdLogout)
	c.Close()
	return status, err
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.ch.Close()
	return c.conn.Close()
}

func (c *Client) roundTrip(cmd channel.Command, fields ...string) (string, error) {
	if err := channel.SendCommand(c.ch, cmd, fields...); err != nil {
		return "", err
	}

	reply, err := channel.ReceiveCommand(c.ch, channel.CmdStatus)
	if err != nil {
		return "", err
	}

	c.log.Debug("command completed", metrics.Fields{
		"command": cmd.Type.String(),
		"status":  reply[0],
	})
	return reply[0], nil
}
