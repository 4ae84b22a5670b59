package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPostRunsInOrder(t *testing.T) {
	l := New()
	l.Start(context.Background())
	defer l.Stop()

	var got []int
	for i := 0; i < 100; i++ {
		n := i
		if err := l.Post(func() { got = append(got, n) }); err != nil {
			t.Fatalf("Post failed: %v", err)
		}
	}

	if err := l.Call(func() {}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if len(got) != 100 {
		t.Fatalf("ran %d closures, want 100", len(got))
	}
	for i, n := range got {
		if n != i {
			t.Fatalf("closure %d ran out of order (got %d)", i, n)
		}
	}
}

func TestCallWaitsForResult(t *testing.T) {
	l := New()
	l.Start(context.Background())
	defer l.Stop()

	value := 0
	if err := l.Call(func() { value = 42 }); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if value != 42 {
		t.Errorf("value = %d, want 42", value)
	}
}

func TestStopDrainsMailbox(t *testing.T) {
	l := New()
	l.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		l.Post(func() { ran.Add(1) })
	}
	l.Stop()

	if ran.Load() != 10 {
		t.Errorf("ran %d closures, want 10", ran.Load())
	}
}

func TestPostAfterStop(t *testing.T) {
	l := New()
	l.Start(context.Background())
	l.Stop()

	if err := l.Post(func() {}); err != ErrStopped {
		t.Errorf("Post after Stop = %v, want ErrStopped", err)
	}
	if err := l.Call(func() {}); err != ErrStopped {
		t.Errorf("Call after Stop = %v, want ErrStopped", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	l := New()

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a never-started loop")
	}
}

func TestStopIdempotent(t *testing.T) {
	l := New()
	l.Start(context.Background())
	l.Stop()
	l.Stop() // must not panic or block
}

func TestContextCancelStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New()
	l.Start(ctx)

	cancel()

	// Stop must not block once the context has taken the loop down.
	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after context cancellation")
	}

	if err := l.Post(func() {}); err != ErrStopped {
		t.Errorf("Post after cancellation = %v, want ErrStopped", err)
	}
}

func TestPostFromLoop(t *testing.T) {
	l := New()
	l.Start(context.Background())
	defer l.Stop()

	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested post never ran")
	}
}
