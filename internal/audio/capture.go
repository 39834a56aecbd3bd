package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	SampleRate = 16000
	Channels   = 1
	// ChunkBytes is 20ms of 16-bit mono audio at SampleRate.
	ChunkBytes = SampleRate / 50 * 2
)

// Capture streams ChunkBytes-sized PCM slices from one Pulse source.
type Capture struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	chunks chan []byte
	done   chan struct{}

	mu       sync.Mutex
	stopped  bool
	pending  []byte
	raw      []byte
	keepRaw  bool
	inflight sync.WaitGroup

	bytes atomic.Int64
}

// StartCapture opens a record stream on device. When keepRaw is set the full
// recording is retained for RawPCM.
func StartCapture(ctx context.Context, device Device, keepRaw bool) (*Capture, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	c := newCapture(device, keepRaw)
	c.client = client

	stream, err := client.NewRecord(
		pulse.NewWriter(recordWriter{c}, pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(ChunkBytes),
		pulse.RecordMediaName("vox dictation"),
	)
	if err != nil {
		_ = c.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}
	c.stream = stream
	stream.Start()

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop()
		case <-c.done:
		}
	}()

	return c, nil
}

func newCapture(device Device, keepRaw bool) *Capture {
	return &Capture{
		device:  device,
		chunks:  make(chan []byte, 128),
		done:    make(chan struct{}),
		keepRaw: keepRaw,
	}
}

func (c *Capture) Device() Device {
	return c.device
}

// Chunks is closed after Stop has flushed the trailing partial chunk.
func (c *Capture) Chunks() <-chan []byte {
	return c.chunks
}

func (c *Capture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// RawPCM returns a copy of the retained recording, or nil when not retained.
func (c *Capture) RawPCM() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.raw == nil {
		return nil
	}
	return append([]byte(nil), c.raw...)
}

// Stop halts the stream and closes Chunks. Safe to call more than once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	close(c.done)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	// No writer can be mid-send once inflight drains, so closing is safe.
	c.inflight.Wait()

	c.mu.Lock()
	tail := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(tail) > 0 {
		select {
		case c.chunks <- tail:
		default:
		}
	}
	close(c.chunks)
	return nil
}

// write accepts PCM from the Pulse reader goroutine.
func (c *Capture) write(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	c.inflight.Add(1)
	defer c.inflight.Done()

	if c.keepRaw {
		c.raw = append(c.raw, buf...)
	}
	c.pending = append(c.pending, buf...)
	var ready [][]byte
	for len(c.pending) >= ChunkBytes {
		ready = append(ready, append([]byte(nil), c.pending[:ChunkBytes]...))
		c.pending = c.pending[ChunkBytes:]
	}
	c.mu.Unlock()

	c.bytes.Add(int64(len(buf)))

	for _, chunk := range ready {
		select {
		case <-c.done:
			return 0, io.EOF
		case c.chunks <- chunk:
		}
	}
	return len(buf), nil
}

type recordWriter struct {
	c *Capture
}

func (w recordWriter) Write(b []byte) (int, error) {
	return w.c.write(b)
}
