// Package ui draws the mirrored camera preview and the face highlight.
package ui

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/dudu/facehighlight/internal/camera"
	"github.com/dudu/facehighlight/internal/geometry"
)

var errEmptyFrame = errors.New("empty frame")

// Compose renders an upright BGR frame into a viewport-sized canvas: the frame
// is mirrored like a selfie camera and scaled to the aperture box. The caller
// owns the returned Mat. On error the canvas is returned blank, so it can
// still be shown.
func Compose(frame gocv.Mat, viewport geometry.Size) (gocv.Mat, error) {
	vw, vh := int(viewport.Width), int(viewport.Height)
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), vh, vw, gocv.MatTypeCV8UC3)

	if frame.Empty() {
		return canvas, errEmptyFrame
	}

	box := geometry.ApertureBox(viewport, camera.SensorAperture(frame.Cols(), frame.Rows()))
	src, dst := placement(box, viewport)
	if dst.Empty() {
		return canvas, nil
	}

	mirrored := gocv.NewMat()
	defer mirrored.Close()
	if err := gocv.Flip(frame, &mirrored, 1); err != nil {
		return canvas, fmt.Errorf("failed to mirror frame: %w", err)
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	if err := gocv.Resize(mirrored, &scaled, boxSize(box), 0, 0, gocv.InterpolationLinear); err != nil {
		return canvas, fmt.Errorf("failed to scale frame: %w", err)
	}

	from := scaled.Region(src)
	defer from.Close()
	to := canvas.Region(dst)
	defer to.Close()
	if err := from.CopyTo(&to); err != nil {
		to.SetTo(gocv.NewScalar(0, 0, 0, 0))
		return canvas, fmt.Errorf("failed to place frame: %w", err)
	}

	return canvas, nil
}

func boxSize(box geometry.Rect) image.Point {
	return image.Pt(int(math.Round(box.Width())), int(math.Round(box.Height())))
}

// placement returns the part of the scaled frame that is visible (src) and
// where it lands on the canvas (dst). A box larger than the viewport is
// centre-cropped, a smaller one is centred.
func placement(box geometry.Rect, viewport geometry.Size) (src, dst image.Rectangle) {
	size := boxSize(box)
	canvas := image.Rect(0, 0, int(viewport.Width), int(viewport.Height))

	offset := image.Pt(int(math.Round(box.Origin.X)), int(math.Round(box.Origin.Y)))
	if box.Width() >= viewport.Width {
		offset.X = -offset.X
	}
	if box.Height() >= viewport.Height {
		offset.Y = -offset.Y
	}

	dst = image.Rectangle{Min: offset, Max: offset.Add(size)}.Intersect(canvas)
	src = dst.Sub(offset)
	return src, dst
}
