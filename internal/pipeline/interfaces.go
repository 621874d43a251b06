package pipeline

import (
	"gocv.io/x/gocv"

	"github.com/dudu/facehighlight/internal/detector"
)

// FaceDetector finds faces in an upright BGR frame
type FaceDetector interface {
	Detect(img gocv.Mat) ([]detector.Face, error)
	Close() error
}
