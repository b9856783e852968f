package filter

import (
	"fmt"
	"math"
)

// Luma weights (ITU-R BT.601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

const (
	// grainAmplitude is the full width of the vintage noise band, centered on zero.
	grainAmplitude = 25
	// popMargin is how far red must exceed green and blue to survive colorPop.
	popMargin = 30
)

// Pipeline applies filters in place. It keeps the vintage noise source and a
// scratch copy reused by the beauty blur across calls; it is not safe for
// concurrent use.
type Pipeline struct {
	noise   Noise
	scratch []uint8
}

// NewPipeline creates a Pipeline drawing vintage grain from noise.
// A nil noise uses NewNoise(1).
func NewPipeline(noise Noise) *Pipeline {
	if noise == nil {
		noise = NewNoise(1)
	}
	return &Pipeline{noise: noise}
}

// Apply runs kind over b in place. The buffer is validated before any write.
func (p *Pipeline) Apply(kind Kind, b *Buffer) error {
	if kind == KindNone {
		return nil
	}
	if err := b.Validate(); err != nil {
		return err
	}

	switch kind {
	case KindGrayscale:
		grayscale(b.Pix)
	case KindSepia:
		sepia(b.Pix)
	case KindVintage:
		vintage(b.Pix, p.noise)
	case KindColorPop:
		colorPop(b.Pix)
	case KindBeauty:
		p.scratch = beauty(b, p.scratch)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}

// clamp stores v the way a clamped byte array does: clamp to [0,255] and round
// half to even.
func clamp(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.RoundToEven(v))
}

func luma(r, g, b float64) float64 {
	return lumaR*r + lumaG*g + lumaB*b
}

func grayscale(pix []uint8) {
	for i := 0; i < len(pix); i += 4 {
		y := clamp(luma(float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])))
		pix[i], pix[i+1], pix[i+2] = y, y, y
	}
}

func sepia(pix []uint8) {
	for i := 0; i < len(pix); i += 4 {
		r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
		pix[i] = clamp(0.393*r + 0.769*g + 0.189*b)
		pix[i+1] = clamp(0.349*r + 0.686*g + 0.168*b)
		pix[i+2] = clamp(0.272*r + 0.534*g + 0.131*b)
	}
}

// vintage warms the image then adds one grain value per pixel to all three channels.
func vintage(pix []uint8, noise Noise) {
	for i := 0; i < len(pix); i += 4 {
		r := clamp(float64(pix[i]) * 1.2)
		g := clamp(float64(pix[i+1]) * 1.1)
		b := clamp(float64(pix[i+2]) * 0.8)

		n := (noise.Float64() - 0.5) * grainAmplitude
		pix[i] = clamp(float64(r) + n)
		pix[i+1] = clamp(float64(g) + n)
		pix[i+2] = clamp(float64(b) + n)
	}
}

// colorPop keeps red-dominant pixels (boosted) and desaturates everything else.
func colorPop(pix []uint8) {
	for i := 0; i < len(pix); i += 4 {
		r, g, b := int(pix[i]), int(pix[i+1]), int(pix[i+2])
		if r > g+popMargin && r > b+popMargin {
			pix[i] = clamp(float64(r) * 1.2)
			continue
		}
		y := clamp(luma(float64(r), float64(g), float64(b)))
		pix[i], pix[i+1], pix[i+2] = y, y, y
	}
}

// beauty is a 3x3 box blur over R, G and B. It reads from an unfiltered copy held
// in scratch (grown when needed and returned for reuse) and leaves the outer
// 1-pixel ring untouched.
func beauty(b *Buffer, scratch []uint8) []uint8 {
	if cap(scratch) < len(b.Pix) {
		scratch = make([]uint8, len(b.Pix))
	}
	src := scratch[:len(b.Pix)]
	copy(src, b.Pix)

	stride := b.Width * 4
	for y := 1; y < b.Height-1; y++ {
		for x := 1; x < b.Width-1; x++ {
			var r, g, bl int
			for ky := -1; ky <= 1; ky++ {
				row := (y+ky)*stride + (x-1)*4
				for k := row; k < row+12; k += 4 {
					r += int(src[k])
					g += int(src[k+1])
					bl += int(src[k+2])
				}
			}
			i := y*stride + x*4
			b.Pix[i] = clamp(float64(r) / 9)
			b.Pix[i+1] = clamp(float64(g) / 9)
			b.Pix[i+2] = clamp(float64(bl) / 9)
		}
	}
	return scratch
}
