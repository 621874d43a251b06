package ui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dudu/facehighlight/internal/geometry"
)

func TestPlacement(t *testing.T) {
	tests := []struct {
		name     string
		box      geometry.Rect
		viewport geometry.Size
		src, dst image.Rectangle
	}{
		{
			name:     "exact fit",
			box:      geometry.NewRect(0, 0, 640, 360),
			viewport: geometry.Size{Width: 640, Height: 360},
			src:      image.Rect(0, 0, 640, 360),
			dst:      image.Rect(0, 0, 640, 360),
		},
		{
			name:     "wider box is centre cropped",
			box:      geometry.NewRect(100, 0, 840, 360),
			viewport: geometry.Size{Width: 640, Height: 360},
			src:      image.Rect(100, 0, 740, 360),
			dst:      image.Rect(0, 0, 640, 360),
		},
		{
			name:     "smaller box is centred",
			box:      geometry.NewRect(0, 30, 640, 300),
			viewport: geometry.Size{Width: 640, Height: 360},
			src:      image.Rect(0, 0, 640, 300),
			dst:      image.Rect(0, 30, 640, 330),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := placement(tt.box, tt.viewport)
			assert.Equal(t, tt.src, src)
			assert.Equal(t, tt.dst, dst)
		})
	}
}

func TestCompose_EmptyFrameGivesBlankCanvas(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	canvas, err := Compose(frame, geometry.Size{Width: 32, Height: 24})
	defer canvas.Close()

	assert.ErrorIs(t, err, errEmptyFrame)
	assert.Equal(t, 32, canvas.Cols())
	assert.Equal(t, 24, canvas.Rows())
	assert.Equal(t, 0, gocv.CountNonZero(canvas.Reshape(1, 0)))
}

func TestCompose_MirrorsFrame(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()
	// top-left pixel white
	for ch := 0; ch < 3; ch++ {
		frame.SetUCharAt(0, ch, 255)
	}

	canvas, err := Compose(frame, geometry.Size{Width: 4, Height: 2})
	defer canvas.Close()

	require.NoError(t, err)
	assert.Equal(t, uint8(255), canvas.GetUCharAt(0, 3*3))
	assert.Equal(t, uint8(0), canvas.GetUCharAt(0, 0))
}
