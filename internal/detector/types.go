package detector

// Point represents a 2D point
type Point struct {
	X, Y float32
}

// BoundingBox represents a face bounding box
type BoundingBox struct {
	X1, Y1 float32 // top-left
	X2, Y2 float32 // bottom-right
}

// Width returns box width
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns box height
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Center returns box center point
func (b BoundingBox) Center() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Area returns box area
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// Scale multiplies every coordinate by s
func (b BoundingBox) Scale(s float32) BoundingBox {
	return BoundingBox{X1: b.X1 * s, Y1: b.Y1 * s, X2: b.X2 * s, Y2: b.Y2 * s}
}

// Landmarks represents 5 facial landmark points
type Landmarks struct {
	LeftEye    Point // index 0
	RightEye   Point // index 1
	Nose       Point // index 2
	LeftMouth  Point // index 3
	RightMouth Point // index 4
}

// Mouth returns the midpoint between the mouth corners
func (l Landmarks) Mouth() Point {
	return Point{
		X: (l.LeftMouth.X + l.RightMouth.X) / 2,
		Y: (l.LeftMouth.Y + l.RightMouth.Y) / 2,
	}
}

// Face represents a detected face in frame coordinates
type Face struct {
	BoundingBox BoundingBox
	Landmarks   Landmarks
	HasMouth    bool
	Score       float32
}

// MouthPosition returns the mouth landmark, or the lower third of the box
// when the backend produced no landmarks.
func (f Face) MouthPosition() Point {
	if f.HasMouth {
		return f.Landmarks.Mouth()
	}
	c := f.BoundingBox.Center()
	return Point{X: c.X, Y: f.BoundingBox.Y1 + f.BoundingBox.Height()*2/3}
}
