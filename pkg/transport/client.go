package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/crest-wm/crest-go/pkg/wire"
)

// SocketEnv is the environment variable naming the control socket.
const SocketEnv = "CREST_SOCKET"

// SocketPath resolves the control socket path: the CREST_SOCKET
// environment variable when set, otherwise crest.socket under
// XDG_RUNTIME_DIR (or the system temporary directory).
func SocketPath() string {
	if path := os.Getenv(SocketEnv); path != "" {
		return path
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "crest.socket")
}

// ClientConfig configures a control socket client.
type ClientConfig struct {
	// SocketPath is the socket to connect to. Empty means SocketPath().
	SocketPath string

	// MaxMessageSize is the maximum message size (default: 64KB).
	MaxMessageSize uint32

	// ConnectTimeout is the connection timeout (default: 30s).
	ConnectTimeout time.Duration

	// EventBuffer is the size of the pushed event channel (default: 64).
	// Events overflowing the buffer block the read loop.
	EventBuffer int
}

// Client connects to a compositor control socket.
type Client struct {
	config ClientConfig
}

// NewClient creates a new control socket client.
func NewClient(config ClientConfig) *Client {
	if config.SocketPath == "" {
		config.SocketPath = SocketPath()
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	if config.EventBuffer == 0 {
		config.EventBuffer = 64
	}
	return &Client{config: config}
}

// Connect establishes a connection to the control socket.
func (c *Client) Connect(ctx context.Context) (*ClientConn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.config.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	cc := &ClientConn{
		conn:      conn,
		framer:    NewFramerWithMaxSize(conn, c.config.MaxMessageSize),
		closeCh:   make(chan struct{}),
		responses: make(chan any),
		events:    make(chan wire.Object, c.config.EventBuffer),
	}
	go cc.readLoop()

	return cc, nil
}

// ClientConn is a live connection to the control socket. The protocol
// has no message ids: responses arrive in request order, so concurrent
// Call invocations are serialized internally.
type ClientConn struct {
	conn   net.Conn
	framer *Framer

	closeCh   chan struct{}
	closeOnce sync.Once
	closeErr  error

	// Responses are unbuffered: the read loop rendezvouses with the
	// caller waiting in Call. Events are buffered and consumed via
	// Events(). Responses are `any` because list methods reply with a
	// bare JSON array.
	responses chan any
	events    chan wire.Object

	callMu sync.Mutex

	readErr   error
	readErrMu sync.Mutex
}

// Events returns the channel of pushed event envelopes. The channel is
// closed when the connection goes down.
func (c *ClientConn) Events() <-chan wire.Object {
	return c.events
}

// Call sends a request and waits for its response object. Most methods
// respond with an object; use CallRaw for the list methods, which
// respond with a bare array. Safe for concurrent use; calls are
// serialized to preserve the request/response pairing.
func (c *ClientConn) Call(ctx context.Context, method string, data wire.Object) (wire.Object, error) {
	resp, err := c.CallRaw(ctx, method, data)
	if err != nil {
		return nil, err
	}
	obj, ok := resp.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s responded with %T, expected an object", method, resp)
	}
	return obj, nil
}

// CallRaw sends a request and waits for its response in whatever shape
// the method produces: an object, or an array for the list methods.
func (c *ClientConn) CallRaw(ctx context.Context, method string, data wire.Object) (any, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	payload, err := wire.EncodeRequest(&wire.Request{Method: method, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if err := c.send(payload); err != nil {
		return nil, err
	}

	select {
	case resp, ok := <-c.responses:
		if !ok {
			return nil, c.connError()
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *ClientConn) send(data []byte) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}
	return c.framer.WriteFrame(data)
}

// Close closes the connection.
func (c *ClientConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *ClientConn) connError() error {
	c.readErrMu.Lock()
	defer c.readErrMu.Unlock()
	if c.readErr != nil {
		return c.readErr
	}
	return ErrConnectionClosed
}

// readLoop demultiplexes incoming frames into responses and pushed
// events, closing both channels when the connection dies.
func (c *ClientConn) readLoop() {
	defer close(c.responses)
	defer close(c.events)

	for {
		data, err := c.framer.ReadFrame()
		if err != nil {
			c.readErrMu.Lock()
			c.readErr = err
			c.readErrMu.Unlock()
			return
		}

		var msg any
		if err := wire.Unmarshal(data, &msg); err != nil {
			c.readErrMu.Lock()
			c.readErr = fmt.Errorf("failed to decode message: %w", err)
			c.readErrMu.Unlock()
			return
		}

		if obj, ok := msg.(map[string]any); ok && wire.PeekKind(obj) == wire.KindEvent {
			select {
			case c.events <- obj:
			case <-c.closeCh:
				return
			}
			continue
		}

		select {
		case c.responses <- msg:
		case <-c.closeCh:
			return
		}
	}
}
