package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dudu/facehighlight/internal/camera"
	"github.com/dudu/facehighlight/internal/config"
	"github.com/dudu/facehighlight/internal/detector"
	"github.com/dudu/facehighlight/internal/geometry"
	"github.com/dudu/facehighlight/internal/inference"
	"github.com/dudu/facehighlight/internal/overlay"
)

// ErrInvalidFrame is returned for frames or viewports without a usable size
var ErrInvalidFrame = errors.New("frame or viewport has no usable size")

// Timing holds performance timing information
type Timing struct {
	Detection time.Duration
	Mapping   time.Duration
	Total     time.Duration
	// Latency is the time from capture until the renderer was updated
	Latency time.Duration
	Faces   int
}

// Pipeline detects faces in each frame and drives the highlight renderer
type Pipeline struct {
	detector   FaceDetector
	renderer   overlay.Renderer
	log        *logrus.Logger
	onnx       bool
	lastTiming Timing
}

// New creates the detector selected by cfg
func New(cfg config.Config, renderer overlay.Renderer, log *logrus.Logger) (*Pipeline, error) {
	orientation, err := detector.ParseOrientation(cfg.Orientation)
	if err != nil {
		return nil, err
	}
	exif := detector.ExifOrientation(orientation)

	var det FaceDetector
	switch cfg.Backend {
	case config.BackendONNX:
		if err := inference.Initialize(cfg.ONNXLibraryPath, log); err != nil {
			return nil, fmt.Errorf("failed to initialize inference: %w", err)
		}
		det, err = detector.NewSCRFD(cfg.SCRFDModelPath, cfg.DetectionSize, cfg.ConfThreshold, cfg.NMSThreshold)
		if err != nil {
			inference.Shutdown()
			return nil, fmt.Errorf("failed to create detector: %w", err)
		}
		if exif != 1 {
			log.WithField("exif", exif).Warn("SCRFD backend ignores the orientation hint")
		}
	case config.BackendPigo:
		opts := detector.DefaultPigoOptions()
		opts.Angle = detector.PigoAngle(exif)
		opts.IoUThreshold = float64(cfg.NMSThreshold)
		det, err = detector.NewPigo(cfg.CascadePath, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create detector: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}

	log.WithFields(logrus.Fields{
		"backend": cfg.Backend,
		"exif":    exif,
	}).Info("Face detector ready")

	p := NewWithDetector(det, renderer, log)
	p.onnx = cfg.Backend == config.BackendONNX
	return p, nil
}

// NewWithDetector creates a pipeline around an existing detector
func NewWithDetector(det FaceDetector, renderer overlay.Renderer, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		detector: det,
		renderer: renderer,
		log:      log,
	}
}

// Process detects faces in a frame and shows or hides the highlight.
// Frames without a usable size are skipped and leave the renderer untouched.
func (p *Pipeline) Process(frame camera.Frame, viewport geometry.Size) error {
	totalStart := time.Now()
	var timing Timing

	aperture := frame.CleanAperture()
	if !aperture.Valid() || !viewport.Valid() {
		return fmt.Errorf("frame %d (aperture %s, viewport %s): %w", frame.Index, aperture, viewport, ErrInvalidFrame)
	}

	detectStart := time.Now()
	faces, err := p.detector.Detect(frame.Mat)
	timing.Detection = time.Since(detectStart)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	features := make([]geometry.FaceFeature, 0, len(faces))
	for _, face := range faces {
		features = append(features, camera.Feature(face))
	}

	mapStart := time.Now()
	timing.Faces = p.Highlight(features, aperture, viewport)
	timing.Mapping = time.Since(mapStart)

	timing.Total = time.Since(totalStart)
	if !frame.CapturedAt.IsZero() {
		timing.Latency = time.Since(frame.CapturedAt)
	}
	p.lastTiming = timing

	fields := logrus.Fields{
		"frame":     frame.Index,
		"faces":     timing.Faces,
		"detection": timing.Detection,
		"total":     timing.Total,
		"latency":   timing.Latency,
	}
	if best, ok := bestFeature(features); ok {
		fields["score"] = best.Score
		fields["landmarks"] = best.HasMouth
	}
	p.log.WithFields(fields).Debug("Frame processed")

	return nil
}

// Highlight sends sensor-space features for one frame to the renderer and
// returns how many highlights were shown.
func (p *Pipeline) Highlight(features []geometry.FaceFeature, aperture, viewport geometry.Size) int {
	if fa, ok := p.renderer.(overlay.FrameAware); ok {
		fa.NextFrame()
	}
	return overlay.Dispatch(features, aperture, viewport, p.renderer)
}

// bestFeature returns the highest scoring feature
func bestFeature(features []geometry.FaceFeature) (geometry.FaceFeature, bool) {
	if len(features) == 0 {
		return geometry.FaceFeature{}, false
	}
	best := features[0]
	for _, f := range features[1:] {
		if f.Score > best.Score {
			best = f
		}
	}
	return best, true
}

// LastTiming returns timing from last Process call
func (p *Pipeline) LastTiming() Timing {
	return p.lastTiming
}

// Close releases pipeline resources
func (p *Pipeline) Close() error {
	var errs []error

	if p.detector != nil {
		if err := p.detector.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if p.onnx {
		if err := inference.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %w", errors.Join(errs...))
	}
	return nil
}
