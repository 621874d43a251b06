// Package geometry maps face rectangles from camera sensor space into the
// coordinate space of the on-screen preview.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Size represents a width and height
type Size struct {
	Width, Height float64
}

// Valid reports whether both dimensions are strictly positive
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Rect represents an origin (top-left) and a size
type Rect struct {
	Origin Point
	Size   Size
}

// NewRect creates a rect from its components
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		Origin: Point{X: x, Y: y},
		Size:   Size{Width: width, Height: height},
	}
}

// Width returns rect width
func (r Rect) Width() float64 {
	return r.Size.Width
}

// Height returns rect height
func (r Rect) Height() float64 {
	return r.Size.Height
}

// MaxX returns the right edge
func (r Rect) MaxX() float64 {
	return r.Origin.X + r.Size.Width
}

// MaxY returns the bottom edge
func (r Rect) MaxY() float64 {
	return r.Origin.Y + r.Size.Height
}

// Offset returns the rect translated by dx, dy
func (r Rect) Offset(dx, dy float64) Rect {
	r.Origin.X += dx
	r.Origin.Y += dy
	return r
}

// Swapped exchanges width with height and x with y.
func (r Rect) Swapped() Rect {
	return NewRect(r.Origin.Y, r.Origin.X, r.Size.Height, r.Size.Width)
}

// Image converts to an integer rectangle for drawing
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.Origin.X)),
		int(math.Round(r.Origin.Y)),
		int(math.Round(r.MaxX())),
		int(math.Round(r.MaxY())),
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %s)", r.Origin.X, r.Origin.Y, r.Size)
}

// FaceFeature is a detected face in sensor-pixel coordinates: origin top-left,
// dimensions in the sensor's native (unrotated) orientation.
type FaceFeature struct {
	Bounds   Rect
	Mouth    Point
	HasMouth bool
	Score    float64
}

// MustValid panics unless both sizes have positive dimensions.
// Calling the mappers with degenerate sizes is a programming error.
func MustValid(viewport, aperture Size) {
	if !viewport.Valid() {
		panic(fmt.Sprintf("geometry: invalid viewport size %s", viewport))
	}
	if !aperture.Valid() {
		panic(fmt.Sprintf("geometry: invalid aperture size %s", aperture))
	}
}
