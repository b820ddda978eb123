package runner

import (
	"fmt"
	"sync"
)

// captureBuffer keeps the head and the tail of a stream within a fixed budget.
// dcd prints the upload URL first and the summary last; the middle is dropped.
type captureBuffer struct {
	mu      sync.Mutex
	headMax int
	tailMax int
	head    []byte
	tail    []byte
	dropped int64
}

func newCaptureBuffer(limit int64) *captureBuffer {
	half := int(limit / 2)
	if half < 1 {
		half = 1
	}
	return &captureBuffer{headMax: half, tailMax: half}
}

func (b *captureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p)
	if room := b.headMax - len(b.head); room > 0 {
		take := min(room, len(p))
		b.head = append(b.head, p[:take]...)
		p = p[take:]
	}
	if len(p) == 0 {
		return n, nil
	}

	b.tail = append(b.tail, p...)
	if over := len(b.tail) - b.tailMax; over > 0 {
		b.dropped += int64(over)
		b.tail = append(b.tail[:0], b.tail[over:]...)
	}
	return n, nil
}

// Bytes returns the captured output, with a marker where bytes were dropped.
func (b *captureBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, 0, len(b.head)+len(b.tail)+64)
	out = append(out, b.head...)
	if b.dropped > 0 {
		out = append(out, fmt.Sprintf("\n... [%d bytes truncated] ...\n", b.dropped)...)
	}
	out = append(out, b.tail...)
	return out
}

// Dropped returns how many bytes were discarded.
func (b *captureBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
