package osc

import (
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Client sends OSC packets to one destination over UDP. It owns a
// reusable encode buffer, so steady-state sends don't allocate. Each
// Send is a single blocking write; there is no implicit batching.
//
// A Client is safe for concurrent use; sends are serialized.
type Client struct {
	conn   *net.UDPConn
	mu     sync.Mutex
	w      Writer
	closed atomic.Bool
}

// Dial creates a new Client with a connection to the given server.
func Dial(addr string) (*Client, error) {
	a, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUDP("udp", nil, a)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Send encodes one message and writes it to the server.
func (c *Client) Send(addr string, args ...interface{}) error {
	if c.closed.Load() {
		return ErrTransportClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.w.Reset()
	if err := c.w.WriteMessage(addr, args...); err != nil {
		return err
	}
	_, err := c.conn.Write(c.w.Bytes())
	return err
}

// SendBundle encodes the given messages into one bundle stamped with tt
// and writes it to the server. Receivers following this package's model
// dispatch the contents immediately regardless of tt.
func (c *Client) SendBundle(tt Timetag, msgs ...*BundleMessage) error {
	if c.closed.Load() {
		return ErrTransportClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elems := make([][]byte, 0, len(msgs))
	var ew Writer
	for _, m := range msgs {
		if err := ew.WriteMessage(m.Address, m.Arguments...); err != nil {
			return err
		}
		elems = append(elems, append([]byte(nil), ew.Bytes()...))
		ew.Reset()
	}

	c.w.Reset()
	if err := c.w.WriteBundle(tt, elems...); err != nil {
		return err
	}
	_, err := c.conn.Write(c.w.Bytes())
	return err
}

// BundleMessage is one element of an outgoing bundle.
type BundleMessage struct {
	Address   string
	Arguments []interface{}
}

// SendInt32 sends a single 'i' argument.
func (c *Client) SendInt32(addr string, v int32) error { return c.Send(addr, v) }

// SendFloat32 sends a single 'f' argument.
func (c *Client) SendFloat32(addr string, v float32) error { return c.Send(addr, v) }

// SendInt64 sends a single 'h' argument.
func (c *Client) SendInt64(addr string, v int64) error { return c.Send(addr, v) }

// SendFloat64 sends a single 'd' argument.
func (c *Client) SendFloat64(addr string, v float64) error { return c.Send(addr, v) }

// SendString sends a single 's' argument.
func (c *Client) SendString(addr string, v string) error { return c.Send(addr, v) }

// SendBlob sends a single 'b' argument.
func (c *Client) SendBlob(addr string, v []byte) error { return c.Send(addr, v) }

// SendBool sends a single 'T' or 'F' argument.
func (c *Client) SendBool(addr string, v bool) error { return c.Send(addr, v) }

// SendImpulse sends a single 'I' argument.
func (c *Client) SendImpulse(addr string) error { return c.Send(addr, Impulse{}) }

// Close closes the connection to the server. Sends after Close return
// ErrTransportClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// AsInt32 converts any integer value to the OSC int32 argument type.
func AsInt32[T constraints.Integer](v T) int32 { return int32(v) }

// AsInt64 converts any integer value to the OSC int64 argument type.
func AsInt64[T constraints.Integer](v T) int64 { return int64(v) }

// AsFloat32 converts any float value to the OSC float32 argument type.
func AsFloat32[T constraints.Float](v T) float32 { return float32(v) }

// AsFloat64 converts any float value to the OSC float64 argument type.
func AsFloat64[T constraints.Float](v T) float64 { return float64(v) }
