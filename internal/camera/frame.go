package camera

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/dudu/facehighlight/internal/detector"
	"github.com/dudu/facehighlight/internal/geometry"
)

// Frame is a captured BGR image in upright (display) orientation
type Frame struct {
	Mat        gocv.Mat
	Index      uint64
	CapturedAt time.Time
}

// Close releases the frame's pixels
func (f Frame) Close() error {
	return f.Mat.Close()
}

// CleanAperture returns the usable image size in sensor orientation.
//
// Sensor space is the transpose of the upright frame: the sensor is treated
// as rotated 90° relative to the display, so the aperture width is the
// number of frame rows.
func (f Frame) CleanAperture() geometry.Size {
	return SensorAperture(f.Mat.Cols(), f.Mat.Rows())
}

// SensorAperture returns the sensor-oriented aperture of a width x height frame
func SensorAperture(width, height int) geometry.Size {
	return geometry.Size{Width: float64(height), Height: float64(width)}
}

// PointToSensor transposes a frame point into sensor space
func PointToSensor(p detector.Point) geometry.Point {
	return geometry.Point{X: float64(p.Y), Y: float64(p.X)}
}

// ToSensor transposes a frame box into sensor space
func ToSensor(b detector.BoundingBox) geometry.Rect {
	return geometry.NewRect(
		float64(b.Y1),
		float64(b.X1),
		float64(b.Height()),
		float64(b.Width()),
	)
}

// Feature converts a detected face into a sensor-space feature
func Feature(f detector.Face) geometry.FaceFeature {
	return geometry.FaceFeature{
		Bounds:   ToSensor(f.BoundingBox),
		Mouth:    PointToSensor(f.MouthPosition()),
		HasMouth: f.HasMouth,
		Score:    float64(f.Score),
	}
}
