package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crest-wm/crest-go/pkg/wire"
)

// stubConn is a Sendable with a controllable write path.
type stubConn struct {
	mu      sync.Mutex
	frames  [][]byte
	release chan struct{} // nil means writes complete immediately
	closed  atomic.Bool
}

func (s *stubConn) ConnID() string { return "stub" }

func (s *stubConn) Send(data []byte) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, data)
	return nil
}

func (s *stubConn) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *stubConn) frameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestClientConnDeliversInOrder(t *testing.T) {
	stub := &stubConn{}
	cl := newClientConn(stub, nil)
	defer cl.close()

	for i := 0; i < 10; i++ {
		cl.Send(wire.Object{"seq": i})
	}

	deadline := time.Now().Add(5 * time.Second)
	for stub.frameCount() < 10 {
		if time.Now().After(deadline) {
			t.Fatal("frames not delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	for i, frame := range stub.frames {
		obj, err := wire.DecodeObject(frame)
		require.NoError(t, err)
		assert.Equal(t, float64(i), obj["seq"], "frame %d out of order", i)
	}
}

func TestClientConnOverflowDisconnects(t *testing.T) {
	stub := &stubConn{release: make(chan struct{})}
	cl := newClientConn(stub, nil)
	defer close(stub.release)

	// One message is stuck in the writer, sendQueueSize fill the queue;
	// the next one cannot be accepted without blocking the loop.
	for i := 0; i < sendQueueSize+2; i++ {
		cl.Send(wire.Object{"seq": i})
	}

	assert.True(t, stub.closed.Load(), "slow client not disconnected")

	// Send after close is a no-op, not a panic.
	cl.Send(wire.Object{"seq": -1})
}

func TestClientConnCloseIsIdempotent(t *testing.T) {
	stub := &stubConn{}
	cl := newClientConn(stub, nil)

	cl.close()
	cl.close()
	assert.True(t, stub.closed.Load())
}
