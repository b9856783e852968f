package filter

import (
	"errors"
	"fmt"
	"image"
)

// ErrDimensions is returned when a buffer's pixel data does not match its
// declared width and height.
var ErrDimensions = errors.New("buffer dimensions mismatch")

// Buffer is a row-major RGBA pixel buffer, 4 bytes per pixel.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromRGBA wraps img. When the image rows are contiguous the buffer shares img's
// pixel memory; otherwise the rows are copied.
func FromRGBA(img *image.RGBA) *Buffer {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 && len(img.Pix) == w*h*4 {
		return &Buffer{Width: w, Height: h, Pix: img.Pix}
	}

	b := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		copy(b.Pix[y*w*4:], row)
	}
	return b
}

// RGBA returns an image view over the buffer's pixels.
func (b *Buffer) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Validate checks the pixel slice against the declared dimensions.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrDimensions)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrDimensions, b.Width, b.Height, want, len(b.Pix))
	}
	return nil
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}
