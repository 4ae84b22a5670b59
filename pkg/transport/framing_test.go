package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/crest-wm/crest-go/pkg/log"
)

func TestFrameWriterReader(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "small message",
			payload: []byte(`{"method":"resources/list-views"}`),
		},
		{
			name:    "medium message",
			payload: bytes.Repeat([]byte("x"), 1000),
		},
		{
			name:    "max size message",
			payload: bytes.Repeat([]byte("y"), DefaultMaxMessageSize),
		},
		{
			name:    "single byte",
			payload: []byte{0x42},
		},
		{
			name:    "binary data",
			payload: []byte{0x00, 0xFF, 0x7F, 0x80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)

			writer := NewFrameWriter(buf)
			if err := writer.WriteFrame(tt.payload); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}

			if buf.Len() != FrameSize(len(tt.payload)) {
				t.Errorf("frame size = %d, want %d", buf.Len(), FrameSize(len(tt.payload)))
			}

			reader := NewFrameReader(buf)
			got, err := reader.ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d bytes", len(got), len(tt.payload))
			}
		})
	}
}

func TestFramePrefixIsLittleEndian(t *testing.T) {
	buf := new(bytes.Buffer)
	writer := NewFrameWriter(buf)
	if err := writer.WriteFrame([]byte("abcd")); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	prefix := buf.Bytes()[:LengthPrefixSize]
	if got := binary.LittleEndian.Uint32(prefix); got != 4 {
		t.Errorf("prefix decodes to %d, want 4", got)
	}
	if !bytes.Equal(prefix, []byte{0x04, 0x00, 0x00, 0x00}) {
		t.Errorf("prefix bytes = %v", prefix)
	}
}

func TestFrameWriterEmptyMessage(t *testing.T) {
	writer := NewFrameWriter(new(bytes.Buffer))
	if err := writer.WriteFrame([]byte{}); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("expected ErrMessageEmpty, got %v", err)
	}
}

func TestFrameWriterTooLarge(t *testing.T) {
	writer := NewFrameWriterWithMaxSize(new(bytes.Buffer), 8)
	if err := writer.WriteFrame(bytes.Repeat([]byte("z"), 9)); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestFrameReaderTooLarge(t *testing.T) {
	buf := new(bytes.Buffer)
	writer := NewFrameWriter(buf)
	if err := writer.WriteFrame(bytes.Repeat([]byte("z"), 100)); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	reader := NewFrameReaderWithMaxSize(buf, 8)
	if _, err := reader.ReadFrame(); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestFrameReaderZeroLength(t *testing.T) {
	reader := NewFrameReader(bytes.NewReader([]byte{0, 0, 0, 0}))
	if _, err := reader.ReadFrame(); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("expected ErrMessageEmpty, got %v", err)
	}
}

func TestFrameReaderTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "empty stream",
			data: nil,
			want: io.EOF,
		},
		{
			name: "partial prefix",
			data: []byte{0x05, 0x00},
			want: ErrFrameTruncated,
		},
		{
			name: "partial payload",
			data: []byte{0x05, 0x00, 0x00, 0x00, 'a', 'b'},
			want: ErrFrameTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewFrameReader(bytes.NewReader(tt.data))
			if _, err := reader.ReadFrame(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameWriterConcurrent(t *testing.T) {
	buf := new(bytes.Buffer)
	writer := NewFrameWriter(buf)
	payload := []byte("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := writer.WriteFrame(payload); err != nil {
				t.Errorf("WriteFrame failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// All ten frames must be intact and readable.
	reader := NewFrameReader(buf)
	for i := 0; i < 10; i++ {
		got, err := reader.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("frame %d corrupted: %q", i, got)
		}
	}
}

// collectLogger records log events for framing log tests.
type collectLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *collectLogger) Log(e log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func TestFramerLogging(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := &collectLogger{}

	framer := NewFramer(buf)
	framer.SetLogger(logger, "conn-1")

	payload := []byte("logged")
	if err := framer.WriteFrame(payload); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if _, err := framer.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	if len(logger.events) != 2 {
		t.Fatalf("got %d log events, want 2", len(logger.events))
	}

	out, in := logger.events[0], logger.events[1]
	if out.Direction != log.DirectionOut || in.Direction != log.DirectionIn {
		t.Errorf("directions = %v, %v", out.Direction, in.Direction)
	}
	for _, e := range logger.events {
		if e.ConnectionID != "conn-1" || e.Layer != log.LayerTransport {
			t.Errorf("event metadata = %+v", e)
		}
		if e.Frame == nil || e.Frame.Size != FrameSize(len(payload)) || e.Frame.Truncated {
			t.Errorf("frame event = %+v", e.Frame)
		}
	}
}

func TestFrameLoggingTruncatesLargePayloads(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := &collectLogger{}

	writer := NewFrameWriter(buf)
	writer.SetLogger(logger, "conn-1")

	payload := bytes.Repeat([]byte("q"), MaxLogFrameDataSize+1)
	if err := writer.WriteFrame(payload); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	if len(logger.events) != 1 {
		t.Fatalf("got %d log events, want 1", len(logger.events))
	}
	fe := logger.events[0].Frame
	if fe == nil || !fe.Truncated {
		t.Fatalf("frame event not truncated: %+v", fe)
	}
	if len(fe.Data) != MaxLogFrameDataSize {
		t.Errorf("logged data = %d bytes, want %d", len(fe.Data), MaxLogFrameDataSize)
	}
	if fe.Size != FrameSize(len(payload)) {
		t.Errorf("frame size = %d, want %d", fe.Size, FrameSize(len(payload)))
	}
}
