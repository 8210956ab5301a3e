package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bft-labs/walletd/pkg/wire"
)

// ErrRejected is returned when the server answers with an error frame.
var ErrRejected = errors.New("client: rejected by server")

// Client is a connection to a walletd server. It is safe for concurrent use;
// requests are serialized because the protocol has no pipelining.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a deadline for each request/response exchange. Zero, the
// default, waits forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn, opts...), nil
}

// New wraps an established connection.
func New(conn net.Conn, opts ...Option) *Client {
	c := &Client{conn: conn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credit adds amount and returns the new balance.
func (c *Client) Credit(amount uint16) (uint16, error) {
	return c.Do(wire.TagCredit, amount)
}

// Debit subtracts amount and returns the new balance.
func (c *Client) Debit(amount uint16) (uint16, error) {
	return c.Do(wire.TagDebit, amount)
}

// Balance returns the current balance. It is sent as a zero credit.
func (c *Client) Balance() (uint16, error) {
	return c.Do(wire.TagCredit, 0)
}

// Do sends one raw instruction and waits for its response.
func (c *Client) Do(tag wire.Tag, amount uint16) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, fmt.Errorf("set deadline: %w", err)
		}
	}

	if err := wire.WriteFrame(c.conn, wire.Frame{Tag: tag, Value: amount}); err != nil {
		return 0, fmt.Errorf("send %s: %w", tag, err)
	}
	resp, err := wire.ReadFrame(c.conn)
	if err != nil {
		return 0, fmt.Errorf("receive %s: %w", tag, err)
	}
	if resp.Tag != wire.TagBalance {
		return 0, ErrRejected
	}
	return resp.Value, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send dials addr, sends one instruction and closes the connection.
func Send(ctx context.Context, addr string, tag wire.Tag, amount uint16, opts ...Option) (uint16, error) {
	c, err := Dial(ctx, addr, opts...)
	if err != nil {
		return 0, err
	}
	defer c.Close()
	return c.Do(tag, amount)
}
