package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dudu/facehighlight/internal/geometry"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestHighlight() (*Highlight, *clock) {
	c := &clock{t: time.Unix(1000, 0)}
	h := NewHighlight(DefaultStyle())
	h.now = c.now
	return h, c
}

func TestHighlight_StartsHidden(t *testing.T) {
	h, c := newTestHighlight()

	_, alpha := h.State(c.now())
	assert.Equal(t, 0.0, alpha)
}

func TestHighlight_FadesIn(t *testing.T) {
	h, c := newTestHighlight()
	rect := geometry.NewRect(10, 20, 30, 40)

	h.Show(rect)

	got, alpha := h.State(c.now())
	assert.Equal(t, rect, got)
	assert.Equal(t, 0.0, alpha)

	c.advance(100 * time.Millisecond)
	_, alpha = h.State(c.now())
	assert.InDelta(t, 0.5, alpha, 1e-9)

	c.advance(200 * time.Millisecond)
	_, alpha = h.State(c.now())
	assert.Equal(t, 1.0, alpha)
}

func TestHighlight_HideKeepsRect(t *testing.T) {
	h, c := newTestHighlight()
	rect := geometry.NewRect(10, 20, 30, 40)

	h.Show(rect)
	c.advance(time.Second)
	h.Hide()
	c.advance(50 * time.Millisecond)

	got, alpha := h.State(c.now())
	assert.Equal(t, rect, got)
	assert.InDelta(t, 0.75, alpha, 1e-9)

	c.advance(time.Second)
	_, alpha = h.State(c.now())
	assert.Equal(t, 0.0, alpha)
}

func TestHighlight_ShowSnapsToNewRect(t *testing.T) {
	h, c := newTestHighlight()

	h.Show(geometry.NewRect(0, 0, 10, 10))
	c.advance(time.Second)
	h.Show(geometry.NewRect(50, 50, 10, 10))

	got, alpha := h.State(c.now())
	assert.Equal(t, geometry.NewRect(50, 50, 10, 10), got)
	assert.Equal(t, 1.0, alpha)
}

func TestHighlight_DrawBlendsBorder(t *testing.T) {
	h, c := newTestHighlight()
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 20, 20, gocv.MatTypeCV8UC3)
	defer canvas.Close()

	require.NoError(t, h.Draw(&canvas, c.now()))
	assert.Equal(t, 0, gocv.CountNonZero(canvas.Reshape(1, 0)))

	h.Show(geometry.NewRect(2, 2, 15, 15))
	c.advance(time.Second)
	require.NoError(t, h.Draw(&canvas, c.now()))

	// green channel of the top edge, away from the rounded corners
	assert.Greater(t, canvas.GetUCharAt(2, 10*3+1), uint8(0))
	assert.Equal(t, uint8(0), canvas.GetUCharAt(10, 10*3+1))
}
