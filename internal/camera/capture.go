package camera

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Capture manages webcam capture
type Capture struct {
	webcam    *gocv.VideoCapture
	deviceID  int
	targetFPS int
	width     int
	height    int
	mu        sync.Mutex
}

// NewCapture opens a camera at the requested resolution and frame rate
func NewCapture(deviceID, targetFPS, width, height int) (*Capture, error) {
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
	}

	webcam.Set(gocv.VideoCaptureFrameWidth, float64(width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(height))
	webcam.Set(gocv.VideoCaptureFPS, float64(targetFPS))

	// The camera may not support the requested resolution
	actualWidth := int(webcam.Get(gocv.VideoCaptureFrameWidth))
	actualHeight := int(webcam.Get(gocv.VideoCaptureFrameHeight))

	return &Capture{
		webcam:    webcam,
		deviceID:  deviceID,
		targetFPS: targetFPS,
		width:     actualWidth,
		height:    actualHeight,
	}, nil
}

// Read captures a frame into the provided Mat
func (c *Capture) Read(frame *gocv.Mat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam == nil {
		return false
	}

	return c.webcam.Read(frame)
}

const (
	readRetryBase  = 10 * time.Millisecond
	readRetryMax   = 500 * time.Millisecond
	maxReadFailure = 50
)

// readRetry paces reads after consecutive failures with a doubling delay and
// gives up once maxReadFailure reads in a row have failed.
type readRetry struct {
	failures int
}

// failed records a failed read and returns how long to wait before the next one
func (r *readRetry) failed() (time.Duration, bool) {
	r.failures++
	if r.failures >= maxReadFailure {
		return 0, false
	}
	delay := readRetryBase << min(r.failures-1, 6)
	return min(delay, readRetryMax), true
}

func (r *readRetry) reset() {
	r.failures = 0
}

// Stream reads frames on its own goroutine until ctx is done, the camera is
// closed, or reads keep failing. Frames that the consumer has not picked up
// yet are dropped in favour of newer ones, and the consumer owns (and must
// Close) every frame it receives.
func (c *Capture) Stream(ctx context.Context, log *logrus.Logger) <-chan Frame {
	out := make(chan Frame, 1)

	go func() {
		defer close(out)

		mat := gocv.NewMat()
		defer func() { mat.Close() }()

		var (
			index uint64
			retry readRetry
		)
		for ctx.Err() == nil {
			if !c.Read(&mat) || mat.Empty() {
				if c.closed() {
					return
				}
				delay, ok := retry.failed()
				if !ok {
					log.WithFields(logrus.Fields{
						"device":   c.deviceID,
						"failures": retry.failures,
					}).Error("Camera stopped delivering frames")
					return
				}
				if retry.failures == 1 {
					log.WithField("device", c.deviceID).Warn("Camera read failed, retrying")
				}
				if !sleepCtx(ctx, delay) {
					return
				}
				continue
			}
			retry.reset()

			index++
			frame := Frame{Mat: mat, Index: index, CapturedAt: time.Now()}
			mat = gocv.NewMat()

			select {
			case out <- frame:
			default:
				// drop the stale frame and queue the new one
				select {
				case stale := <-out:
					log.WithField("frame", stale.Index).Trace("Dropped late frame")
					stale.Close()
				default:
				}
				select {
				case out <- frame:
				case <-ctx.Done():
					frame.Close()
					return
				}
			}
		}
	}()

	return out
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Capture) closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.webcam == nil
}

// Width returns frame width
func (c *Capture) Width() int {
	return c.width
}

// Height returns frame height
func (c *Capture) Height() int {
	return c.height
}

// Close releases the camera
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam != nil {
		err := c.webcam.Close()
		c.webcam = nil
		return err
	}
	return nil
}
