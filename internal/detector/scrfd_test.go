package detector

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleAnchorLevel builds outputs for a 2x2 grid at stride 8 where only
// anchor 3 (cell x=1, y=0, second anchor) is above threshold. Its centre is
// (12, 4) in model pixels.
func singleAnchorLevel() levelOutputs {
	const anchors = 2 * 2 * scrfdAnchors
	out := levelOutputs{
		scores: make([]float32, anchors),
		boxes:  make([]float32, anchors*4),
		kps:    make([]float32, anchors*2*scrfdLandmarks),
	}
	for i := range out.scores {
		out.scores[i] = -10
	}
	out.scores[3] = 5

	copy(out.boxes[3*4:], []float32{1, 0.25, 0.5, 2})
	// left mouth corner (-0.5, 0.5), right mouth corner (0.25, 0.5)
	copy(out.kps[3*2*scrfdLandmarks+6:], []float32{-0.5, 0.5, 0.25, 0.5})
	return out
}

// A 32x24 frame letterboxed into a 16px input has scale 0.5.
var halfScale = letterbox{scale: 0.5, frame: image.Pt(32, 24)}

func TestDecodeLevel_SingleAnchor(t *testing.T) {
	faces := decodeLevel(singleAnchorLevel(), 8, 2, 0.5, halfScale)

	require.Len(t, faces, 1)
	f := faces[0]
	assert.InDelta(t, 0.9933, f.Score, 1e-4)
	assert.True(t, f.HasMouth)

	// y2 decodes to 40 and is clamped to the frame height
	assert.Equal(t, BoundingBox{X1: 8, Y1: 4, X2: 32, Y2: 24}, f.BoundingBox)

	assert.Equal(t, Point{X: 16, Y: 16}, f.Landmarks.LeftMouth)
	assert.Equal(t, Point{X: 28, Y: 16}, f.Landmarks.RightMouth)
	assert.Equal(t, Point{X: 24, Y: 8}, f.Landmarks.Nose)
	assert.Equal(t, Point{X: 22, Y: 16}, f.MouthPosition())
}

func TestDecodeLevel_BelowThreshold(t *testing.T) {
	out := singleAnchorLevel()
	out.scores[3] = 0

	assert.Empty(t, decodeLevel(out, 8, 2, 0.5, halfScale))
}

func TestDecodeLevel_ShortOutputs(t *testing.T) {
	out := singleAnchorLevel()
	out.kps = out.kps[:3*2*scrfdLandmarks]

	assert.Empty(t, decodeLevel(out, 8, 2, 0.5, halfScale))
}

func TestBytesToFloat32(t *testing.T) {
	// 1.0 and -2.0, little endian
	data := []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0}
	assert.Equal(t, []float32{1, -2}, bytesToFloat32(data))
}
