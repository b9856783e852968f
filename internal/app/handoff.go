package app

import (
	"context"
	"sync"
)

// Handoff passes values from one producer goroutine to one consumer goroutine.
// The latest value wins: publishing over an unread value drops the older one.
type Handoff[T any] struct {
	mu      sync.Mutex
	val     T
	has     bool
	ready   chan struct{}
	release func(T)
}

// NewHandoff creates an empty Handoff. release, if non-nil, is called for every
// value that is dropped without being taken.
func NewHandoff[T any](release func(T)) *Handoff[T] {
	return &Handoff[T]{
		ready:   make(chan struct{}, 1),
		release: release,
	}
}

// Publish stores v, replacing any unread value.
func (h *Handoff[T]) Publish(v T) {
	h.mu.Lock()
	if h.has && h.release != nil {
		h.release(h.val)
	}
	h.val = v
	h.has = true
	h.mu.Unlock()

	select {
	case h.ready <- struct{}{}:
	default:
	}
}

// TryTake returns the pending value without blocking.
func (h *Handoff[T]) TryTake() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if !h.has {
		return zero, false
	}
	v := h.val
	h.val = zero
	h.has = false
	return v, true
}

// Take blocks until a value is published or ctx is done.
func (h *Handoff[T]) Take(ctx context.Context) (T, error) {
	for {
		if v, ok := h.TryTake(); ok {
			return v, nil
		}
		select {
		case <-h.ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Drain releases any unread value.
func (h *Handoff[T]) Drain() {
	if v, ok := h.TryTake(); ok && h.release != nil {
		h.release(v)
	}
}
