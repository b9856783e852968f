package capture

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/airframe/internal/filter"
)

// DefaultJPEGQuality is used for captured stills and the preview stream.
const DefaultJPEGQuality = 90

// EncodeJPEG encodes an RGBA buffer as JPEG.
func EncodeJPEG(b *filter.Buffer, quality int) ([]byte, error) {
	mat, err := BufferToMat(b)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// DecodeImage decodes an encoded image (JPEG, PNG, ...) into an RGBA buffer.
func DecodeImage(data []byte) (*filter.Buffer, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer mat.Close()

	return MatToBuffer(mat, nil)
}

// LoadImage reads an image file into an RGBA buffer.
func LoadImage(path string) (*filter.Buffer, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("read image %s: unreadable or missing", path)
	}
	return MatToBuffer(mat, nil)
}

// SaveImage writes b to path; the format follows the file extension.
func SaveImage(path string, b *filter.Buffer) error {
	mat, err := BufferToMat(b)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("write image %s failed", path)
	}
	return nil
}
