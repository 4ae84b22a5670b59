package service

import (
	"sync"
	"time"

	"github.com/crest-wm/crest-go/pkg/log"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// sendQueueSize bounds the per-client outgoing queue. A client that
// falls this far behind is disconnected rather than allowed to stall
// the processing loop.
const sendQueueSize = 256

// Sendable is the interface for a connection that can send framed data.
// Implemented by transport.ServerConn.
type Sendable interface {
	ConnID() string
	Send(data []byte) error
	Close() error
}

// clientConn adapts a transport connection to ipc.Client. Send is
// called on the processing loop and must never block, so frames are
// handed to a dedicated writer goroutine through a bounded queue.
type clientConn struct {
	conn   Sendable
	logger log.Logger

	queue     chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

func newClientConn(conn Sendable, logger log.Logger) *clientConn {
	c := &clientConn{
		conn:    conn,
		logger:  logger,
		queue:   make(chan []byte, sendQueueSize),
		closeCh: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// ID implements ipc.Client.
func (c *clientConn) ID() string {
	return c.conn.ConnID()
}

// Send implements ipc.Client. The message is encoded and queued; a full
// queue closes the connection.
func (c *clientConn) Send(msg any) {
	data, err := wire.Marshal(msg)
	if err != nil {
		c.logError("failed to encode outgoing message", err)
		return
	}
	c.logEvent(msg)

	select {
	case c.queue <- data:
	case <-c.closeCh:
	default:
		// The client is not keeping up. Cut it loose; disconnect
		// teardown reclaims its subscriptions.
		c.logError("send queue overflow, closing connection", nil)
		c.close()
	}
}

// close stops the writer and closes the underlying connection. The
// transport's read loop then terminates and runs normal disconnect
// handling.
func (c *clientConn) close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.conn.Close()
	})
}

func (c *clientConn) writeLoop() {
	for {
		select {
		case data := <-c.queue:
			if err := c.conn.Send(data); err != nil {
				c.close()
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// logEvent records pushed event envelopes at the wire layer. Responses
// are logged by the daemon's dispatch path.
func (c *clientConn) logEvent(msg any) {
	if c.logger == nil {
		return
	}
	obj, ok := msg.(wire.Object)
	if !ok || wire.PeekKind(obj) != wire.KindEvent {
		return
	}
	name, _ := obj[wire.EventKey].(string)
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.conn.ConnID(),
		Direction:    log.DirectionOut,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message: &log.MessageEvent{
			Type:      log.MessageTypeEvent,
			EventName: name,
			Payload:   obj,
		},
	})
}

func (c *clientConn) logError(context string, err error) {
	if c.logger == nil {
		return
	}
	msg := context
	if err != nil {
		msg = err.Error()
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.conn.ConnID(),
		Layer:        log.LayerService,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerService,
			Message: msg,
			Context: context,
		},
	})
}
