package capture

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/airframe/internal/filter"
)

// CollageShots is the number of frames in a photo booth collage.
const CollageShots = 4

// ErrCollageShots is returned when Collage gets other than CollageShots frames.
var ErrCollageShots = errors.New("collage needs exactly 4 shots")

// Collage tiles four shots into a 2x2 grid in reading order. Every tile has the
// size of the first shot; later shots are resized to fit.
func Collage(shots []*filter.Buffer) (*filter.Buffer, error) {
	if len(shots) != CollageShots {
		return nil, fmt.Errorf("%w: got %d", ErrCollageShots, len(shots))
	}

	tile := image.Point{X: shots[0].Width, Y: shots[0].Height}
	mats := make([]gocv.Mat, 0, len(shots))
	defer func() {
		for _, m := range mats {
			m.Close()
		}
	}()

	for i, shot := range shots {
		mat, err := BufferToMat(shot)
		if err != nil {
			mat.Close()
			return nil, fmt.Errorf("shot %d: %w", i+1, err)
		}
		if mat.Cols() != tile.X || mat.Rows() != tile.Y {
			resized := gocv.NewMat()
			gocv.Resize(mat, &resized, tile, 0, 0, gocv.InterpolationLinear)
			mat.Close()
			mat = resized
		}
		mats = append(mats, mat)
	}

	top := gocv.NewMat()
	defer top.Close()
	gocv.Hconcat(mats[0], mats[1], &top)

	bottom := gocv.NewMat()
	defer bottom.Close()
	gocv.Hconcat(mats[2], mats[3], &bottom)

	grid := gocv.NewMat()
	defer grid.Close()
	gocv.Vconcat(top, bottom, &grid)

	return MatToBuffer(grid, nil)
}
