package app

import (
	"context"
	"sync"

	"github.com/ayusman/airframe/internal/filter"
)

// FrameBuffer double-buffers rendered frames. The render goroutine owns the back
// buffer and publishes it with Swap; readers copy the front buffer with Snapshot.
type FrameBuffer struct {
	mu      sync.RWMutex
	front   *filter.Buffer
	back    *filter.Buffer
	seq     uint64
	changed chan struct{}
}

// NewFrameBuffer creates an empty FrameBuffer; Snapshot reports false until the
// first Swap.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{changed: make(chan struct{})}
}

// Back returns the buffer the writer may fill next. It is nil until two frames
// have been swapped in.
func (f *FrameBuffer) Back() *filter.Buffer {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.back
}

// Swap makes b the front buffer and recycles the previous front as the back.
func (f *FrameBuffer) Swap(b *filter.Buffer) {
	f.mu.Lock()
	f.back = f.front
	if f.back == b {
		f.back = nil
	}
	f.front = b
	f.seq++
	close(f.changed)
	f.changed = make(chan struct{})
	f.mu.Unlock()
}

// Snapshot returns a copy of the front buffer.
func (f *FrameBuffer) Snapshot() (*filter.Buffer, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.front == nil {
		return nil, false
	}
	return f.front.Clone(), true
}

// Seq returns the number of frames swapped in so far.
func (f *FrameBuffer) Seq() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seq
}

// Wait blocks until a frame newer than seq is available and returns its copy
// and sequence number.
func (f *FrameBuffer) Wait(ctx context.Context, seq uint64) (*filter.Buffer, uint64, error) {
	for {
		f.mu.RLock()
		if f.seq > seq && f.front != nil {
			b, cur := f.front.Clone(), f.seq
			f.mu.RUnlock()
			return b, cur, nil
		}
		changed := f.changed
		f.mu.RUnlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, seq, ctx.Err()
		}
	}
}
