package geometry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var portraitAperture = Size{Width: 480, Height: 640}

func TestMapFaceRect(t *testing.T) {
	viewport := Size{Width: 500, Height: 1000}
	bounds := NewRect(100, 200, 80, 120)

	got := MapFaceRect(Point{X: 140, Y: 290}, bounds, portraitAperture, viewport)

	assertRectInDelta(t, NewRect(250, 208.333333, 250, 166.666666), got)
}

func TestMapFaceRect_Deterministic(t *testing.T) {
	viewport := Size{Width: 375, Height: 667}
	aperture := Size{Width: 1080, Height: 1920}
	bounds := NewRect(312.5, 401.25, 287.75, 290.5)

	first := MapFaceRect(Point{X: 450, Y: 600}, bounds, aperture, viewport)
	second := MapFaceRect(Point{X: 450, Y: 600}, bounds, aperture, viewport)

	assert.Equal(t, first, second)
}

func TestMapFaceRect_ConcurrentCalls(t *testing.T) {
	viewport := Size{Width: 640, Height: 480}
	aperture := Size{Width: 480, Height: 640}
	bounds := NewRect(10, 20, 30, 40)
	want := MapFaceRect(Point{}, bounds, aperture, viewport)

	var wg sync.WaitGroup
	results := make([]Rect, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MapFaceRect(Point{}, bounds, aperture, viewport)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestMapFaceRect_FullAperture(t *testing.T) {
	viewports := []Size{
		{Width: 1000, Height: 500},
		{Width: 500, Height: 1000},
		{Width: 480, Height: 640},
	}

	for _, vp := range viewports {
		box := ApertureBox(vp, portraitAperture)
		full := NewRect(0, 0, portraitAperture.Width, portraitAperture.Height)

		got := MapFaceRect(Point{}, full, portraitAperture, vp)

		assert.InDelta(t, box.Width(), got.Width(), 1e-9, "viewport %s", vp)
		assert.InDelta(t, box.Height(), got.Height(), 1e-9, "viewport %s", vp)
		assert.InDelta(t, box.Origin.Y, got.Origin.Y, 1e-9, "viewport %s", vp)
		assert.InDelta(t, vp.Width-box.Width()+box.Origin.X, got.Origin.X, 1e-9, "viewport %s", vp)
	}
}

func TestMapFaceRect_MirrorConsistency(t *testing.T) {
	viewports := []Size{
		{Width: 1000, Height: 500},
		{Width: 500, Height: 1000},
		{Width: 1280, Height: 720},
		{Width: 375, Height: 667},
	}
	left := NewRect(50, 100, 80, 120)
	// mirrored across the sensor axis that becomes the display's horizontal axis
	right := NewRect(left.Origin.X, portraitAperture.Height-left.MaxY(), left.Width(), left.Height())

	for _, vp := range viewports {
		a := MapFaceRect(Point{}, left, portraitAperture, vp)
		b := MapFaceRect(Point{}, right, portraitAperture, vp)

		assert.InDelta(t, a.Width(), b.Width(), 1e-9)
		assert.InDelta(t, a.Origin.Y, b.Origin.Y, 1e-9)
		assert.InDelta(t, vp.Width, a.Origin.X+b.MaxX(), 1e-6, "viewport %s", vp)
	}
}

func TestMapFaceRect_NoClamping(t *testing.T) {
	viewport := Size{Width: 480, Height: 640}
	bounds := NewRect(-40, -60, 200, 200)

	got := MapFaceRect(Point{}, bounds, portraitAperture, viewport)

	assert.Greater(t, got.MaxX(), viewport.Width)
	assert.Less(t, got.Origin.Y, 0.0)
	assert.InDelta(t, 200*4.0/3.0, got.Width(), 1e-9)
	assert.InDelta(t, 200*4.0/3.0, got.Height(), 1e-9)
}

func TestMapFeature_UsesBounds(t *testing.T) {
	viewport := Size{Width: 500, Height: 1000}
	f := FaceFeature{
		Bounds:   NewRect(100, 200, 80, 120),
		Mouth:    Point{X: 140, Y: 290},
		HasMouth: true,
	}

	assert.Equal(t,
		MapFaceRect(f.Mouth, f.Bounds, portraitAperture, viewport),
		MapFeature(f, portraitAperture, viewport))
}
