package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/airframe/internal/filter"
)

// Zoom limits.
const (
	MinZoom  = 1.0
	MaxZoom  = 3.0
	ZoomStep = 0.1
)

// MatToBuffer converts a BGR (or BGRA) camera frame into an RGBA buffer. dst is
// reused when its dimensions match the frame; otherwise a new buffer is returned.
func MatToBuffer(mat gocv.Mat, dst *filter.Buffer) (*filter.Buffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty frame", filter.ErrDimensions)
	}

	rgba := gocv.NewMat()
	defer rgba.Close()

	switch mat.Channels() {
	case 4:
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRAToRGBA)
	case 3:
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRToRGBA)
	case 1:
		gocv.CvtColor(mat, &rgba, gocv.ColorGrayToBGRA)
	default:
		return nil, fmt.Errorf("unsupported frame with %d channels", mat.Channels())
	}

	w, h := rgba.Cols(), rgba.Rows()
	if dst == nil || dst.Width != w || dst.Height != h || len(dst.Pix) != w*h*4 {
		dst = filter.NewBuffer(w, h)
	}
	copy(dst.Pix, rgba.ToBytes())
	return dst, nil
}

// BufferToMat converts an RGBA buffer into a BGR Mat. The caller closes the result.
func BufferToMat(b *filter.Buffer) (gocv.Mat, error) {
	if err := b.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	rgba, err := gocv.NewMatFromBytes(b.Height, b.Width, gocv.MatTypeCV8UC4, b.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrap buffer: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// ClampZoom limits z to [MinZoom, MaxZoom] and rounds it to one decimal.
func ClampZoom(z float64) float64 {
	switch {
	case z < MinZoom:
		z = MinZoom
	case z > MaxZoom:
		z = MaxZoom
	}
	return float64(int(z*10+0.5)) / 10
}

// ZoomRect returns the centered crop of a w x h frame at zoom factor z.
func ZoomRect(w, h int, z float64) image.Rectangle {
	z = ClampZoom(z)
	cw, ch := int(float64(w)/z), int(float64(h)/z)
	x0, y0 := (w-cw)/2, (h-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// Zoom crops the center of src by factor z and scales it back to the source size.
// The caller closes the result.
func Zoom(src gocv.Mat, z float64) gocv.Mat {
	if ClampZoom(z) == MinZoom {
		return src.Clone()
	}

	w, h := src.Cols(), src.Rows()
	region := src.Region(ZoomRect(w, h, z))
	defer region.Close()

	dst := gocv.NewMat()
	gocv.Resize(region, &dst, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationLinear)
	return dst
}
