package ui

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

// fpsCounter averages the display rate over windows of at least a second
type fpsCounter struct {
	start  time.Time
	frames int
	fps    float64
}

func (c *fpsCounter) tick(now time.Time) float64 {
	c.frames++
	if elapsed := now.Sub(c.start); elapsed >= time.Second {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.start = now
	}
	return c.fps
}

// Window manages the preview display
type Window struct {
	window *gocv.Window
	name   string
	fps    fpsCounter
}

// NewWindow creates a preview window sized to the viewport
func NewWindow(name string, width, height int) *Window {
	window := gocv.NewWindow(name)
	// Force window to appear on macOS
	window.ResizeWindow(width, height)
	window.MoveWindow(100, 100)
	return &Window{
		window: window,
		name:   name,
		fps:    fpsCounter{start: time.Now()},
	}
}

// Show displays a composed canvas and updates the FPS counter
func (w *Window) Show(canvas *gocv.Mat) {
	fps := w.fps.tick(time.Now())

	gocv.PutText(canvas, fmt.Sprintf("FPS: %.1f", fps), image.Pt(10, 30),
		gocv.FontHersheyPlain, 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)

	w.window.IMShow(*canvas)
}

// WaitKey waits for key press, returns key code or -1
func (w *Window) WaitKey(delayMs int) int {
	return w.window.WaitKey(delayMs)
}

// FPS returns current frames per second
func (w *Window) FPS() float64 {
	return w.fps.fps
}

// Close closes the window
func (w *Window) Close() error {
	if w.window != nil {
		return w.window.Close()
	}
	return nil
}
