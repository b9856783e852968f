package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayusman/airframe/internal/filter"
)

func TestFrameBuffer_Swap(t *testing.T) {
	fb := NewFrameBuffer()

	if _, ok := fb.Snapshot(); ok {
		t.Fatal("Snapshot() on empty buffer returned a frame")
	}
	if fb.Back() != nil {
		t.Fatal("Back() on empty buffer is not nil")
	}

	first := filter.NewBuffer(2, 2)
	first.Pix[0] = 10
	fb.Swap(first)

	second := filter.NewBuffer(2, 2)
	second.Pix[0] = 20
	fb.Swap(second)

	if fb.Back() != first {
		t.Error("previous front was not recycled as the back buffer")
	}
	if fb.Seq() != 2 {
		t.Errorf("Seq() = %d, want 2", fb.Seq())
	}

	snap, ok := fb.Snapshot()
	if !ok || snap.Pix[0] != 20 {
		t.Fatalf("Snapshot() = %v, %v", snap, ok)
	}
	snap.Pix[0] = 99
	if again, _ := fb.Snapshot(); again.Pix[0] != 20 {
		t.Error("Snapshot() shares memory with the front buffer")
	}

	fb.Swap(second)
	if fb.Back() == second {
		t.Error("front buffer handed out as back buffer")
	}
}

func TestFrameBuffer_Wait(t *testing.T) {
	fb := NewFrameBuffer()

	go func() {
		time.Sleep(20 * time.Millisecond)
		b := filter.NewBuffer(1, 1)
		b.Pix[3] = 255
		fb.Swap(b)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b, seq, err := fb.Wait(ctx, 0)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if seq != 1 || b.Pix[3] != 255 {
		t.Errorf("Wait() = seq %d, pix %v", seq, b.Pix)
	}

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	if _, _, err := fb.Wait(short, seq); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() without new frame error = %v", err)
	}
}
