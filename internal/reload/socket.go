package reload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// Stats socket commands.
const (
	CommandShowSSLCert = "show ssl cert"
	CommandShowInfo    = "show info"
)

// Socket defaults.
const (
	DefaultSocketTimeout = 10 * time.Second
	DefaultStatusTimeout = 5 * time.Second

	reloadReadSize = 4096
	statusReadSize = 8192
)

// SocketClient speaks the proxy's line-oriented stats socket protocol.
// Each call opens its own connection.
type SocketClient struct {
	path string
}

// NewSocketClient creates a client for the unix socket at path.
func NewSocketClient(path string) *SocketClient {
	return &SocketClient{path: path}
}

// Path returns the socket path.
func (c *SocketClient) Path() string { return c.path }

func (c *SocketClient) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.path)
	if err != nil {
		return nil, err
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Probe sends cmd and performs a single read of at most reloadReadSize
// bytes. An immediately closed connection counts as a reply.
func (c *SocketClient) Probe(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	conn, err := c.dial(ctx, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return "", err
	}

	buf := make([]byte, reloadReadSize)
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return string(buf[:n]), nil
}

// Execute sends cmd and reads the reply until the proxy closes the
// connection, the buffer limit is hit or the deadline passes. A timeout
// after some data has arrived still returns that data.
func (c *SocketClient) Execute(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	conn, err := c.dial(ctx, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(conn, statusReadSize))
	if err != nil {
		if len(data) > 0 && errors.Is(err, os.ErrDeadlineExceeded) {
			return string(data), nil
		}
		return "", err
	}
	return string(data), nil
}

// SocketTransport reloads through the stats socket.
type SocketTransport struct {
	client  *SocketClient
	timeout time.Duration
}

// NewSocketTransport creates a socket transport.
func NewSocketTransport(client *SocketClient, timeout time.Duration) *SocketTransport {
	if timeout <= 0 {
		timeout = DefaultSocketTimeout
	}
	return &SocketTransport{client: client, timeout: timeout}
}

// Name implements Transport.
func (t *SocketTransport) Name() string { return "socket" }

// Reload implements Transport.
func (t *SocketTransport) Reload(ctx context.Context) error {
	if _, err := t.client.Probe(ctx, CommandShowSSLCert, t.timeout); err != nil {
		return fmt.Errorf("stats socket %s: %w", t.client.Path(), err)
	}
	return nil
}
