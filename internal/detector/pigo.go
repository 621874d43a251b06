package detector

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"gocv.io/x/gocv"
)

// PigoOptions tunes the cascade detector
type PigoOptions struct {
	DetectWidth  int     // frames wider than this are downscaled before detection
	MinSize      int     // smallest face, in detection pixels
	Quality      float32 // minimum cluster score
	IoUThreshold float64
	Angle        float64 // see PigoAngle
}

// DefaultPigoOptions returns options suited to a 720p webcam
func DefaultPigoOptions() PigoOptions {
	return PigoOptions{
		DetectWidth:  480,
		MinSize:      40,
		Quality:      5.0,
		IoUThreshold: 0.2,
	}
}

// Pigo implements a pure Go cascade face detector
type Pigo struct {
	classifier *pigo.Pigo
	opts       PigoOptions
}

// NewPigo loads the facefinder cascade from disk
func NewPigo(cascadePath string, opts PigoOptions) (*Pigo, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade file %s: %w", cascadePath, err)
	}

	return &Pigo{classifier: classifier, opts: opts}, nil
}

// Detect finds faces in a BGR frame
func (p *Pigo) Detect(img gocv.Mat) ([]Face, error) {
	src, err := img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return p.DetectImage(src), nil
}

// DetectImage finds faces in an image whose bounds start at the origin
func (p *Pigo) DetectImage(src image.Image) []Face {
	origWidth, origHeight := src.Bounds().Dx(), src.Bounds().Dy()

	scale := float32(1)
	if p.opts.DetectWidth > 0 && origWidth > p.opts.DetectWidth {
		scale = float32(origWidth) / float32(p.opts.DetectWidth)
		src = imaging.Resize(src, p.opts.DetectWidth, 0, imaging.Linear)
	}

	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()
	params := pigo.CascadeParams{
		MinSize:     p.opts.MinSize,
		MaxSize:     min(rows, cols),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := p.classifier.RunCascade(params, p.opts.Angle)
	dets = p.classifier.ClusterDetections(dets, p.opts.IoUThreshold)

	faces := make([]Face, 0, len(dets))
	for _, d := range dets {
		if d.Q < p.opts.Quality {
			continue
		}
		faces = append(faces, detectionToFace(d, scale, origWidth, origHeight))
	}
	return faces
}

// Close releases detector resources
func (p *Pigo) Close() error {
	return nil
}

// detectionToFace converts a pigo detection (centre + square side) in
// downscaled pixels into a face in frame pixels.
func detectionToFace(d pigo.Detection, scale float32, width, height int) Face {
	half := float32(d.Scale) / 2
	box := BoundingBox{
		X1: float32(d.Col) - half,
		Y1: float32(d.Row) - half,
		X2: float32(d.Col) + half,
		Y2: float32(d.Row) + half,
	}.Scale(scale)

	return Face{
		BoundingBox: clampBox(box, width, height),
		Score:       d.Q,
	}
}
