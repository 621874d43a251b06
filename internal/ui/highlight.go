package ui

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/dudu/facehighlight/internal/geometry"
)

// Style describes how the highlight is drawn
type Style struct {
	Color     color.RGBA
	Opacity   float64
	Thickness int
	Radius    int
	Fade      time.Duration
}

// DefaultStyle is a thin translucent green rounded rectangle
func DefaultStyle() Style {
	return Style{
		Color:     color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Opacity:   0.7,
		Thickness: 1,
		Radius:    4,
		Fade:      200 * time.Millisecond,
	}
}

// Highlight is the on-screen face rectangle. Show and Hide may be called from
// the capture goroutine while Draw runs on the UI thread.
type Highlight struct {
	mu    sync.Mutex
	style Style
	now   func() time.Time

	rect      geometry.Rect
	fromAlpha float64
	toAlpha   float64
	start     time.Time
}

// NewHighlight creates a hidden highlight
func NewHighlight(style Style) *Highlight {
	return &Highlight{style: style, now: time.Now}
}

// Show moves the highlight to rect and fades it in
func (h *Highlight) Show(rect geometry.Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.fromAlpha = h.alphaAt(now)
	h.toAlpha = 1
	h.start = now
	h.rect = rect
}

// Hide fades the highlight out, leaving it where it was
func (h *Highlight) Hide() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.fromAlpha = h.alphaAt(now)
	h.toAlpha = 0
	h.start = now
}

// State returns the current rect and alpha
func (h *Highlight) State(now time.Time) (geometry.Rect, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rect, h.alphaAt(now)
}

// alphaAt interpolates the fade linearly; callers hold mu
func (h *Highlight) alphaAt(now time.Time) float64 {
	if h.style.Fade <= 0 {
		return h.toAlpha
	}
	t := float64(now.Sub(h.start)) / float64(h.style.Fade)
	if t >= 1 {
		return h.toAlpha
	}
	if t <= 0 {
		return h.fromAlpha
	}
	return h.fromAlpha + (h.toAlpha-h.fromAlpha)*t
}

// Draw blends the highlight onto canvas. The canvas is left unchanged when
// blending fails.
func (h *Highlight) Draw(canvas *gocv.Mat, now time.Time) error {
	rect, alpha := h.State(now)
	alpha *= h.style.Opacity
	if alpha <= 0 {
		return nil
	}

	layer := canvas.Clone()
	defer layer.Close()
	drawRoundedRect(&layer, rect.Image(), h.style.Radius, h.style.Color, h.style.Thickness)
	if err := gocv.AddWeighted(layer, alpha, *canvas, 1-alpha, 0, canvas); err != nil {
		return fmt.Errorf("failed to blend highlight: %w", err)
	}
	return nil
}

func drawRoundedRect(img *gocv.Mat, r image.Rectangle, radius int, c color.RGBA, thickness int) {
	radius = min(radius, r.Dx()/2, r.Dy()/2)
	if radius <= 0 {
		gocv.Rectangle(img, r, c, thickness)
		return
	}

	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X, r.Max.Y
	gocv.Line(img, image.Pt(x0+radius, y0), image.Pt(x1-radius, y0), c, thickness)
	gocv.Line(img, image.Pt(x0+radius, y1), image.Pt(x1-radius, y1), c, thickness)
	gocv.Line(img, image.Pt(x0, y0+radius), image.Pt(x0, y1-radius), c, thickness)
	gocv.Line(img, image.Pt(x1, y0+radius), image.Pt(x1, y1-radius), c, thickness)

	axes := image.Pt(radius, radius)
	gocv.Ellipse(img, image.Pt(x0+radius, y0+radius), axes, 0, 180, 270, c, thickness)
	gocv.Ellipse(img, image.Pt(x1-radius, y0+radius), axes, 0, 270, 360, c, thickness)
	gocv.Ellipse(img, image.Pt(x1-radius, y1-radius), axes, 0, 0, 90, c, thickness)
	gocv.Ellipse(img, image.Pt(x0+radius, y1-radius), axes, 0, 90, 180, c, thickness)
}
