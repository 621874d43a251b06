package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Swapped(t *testing.T) {
	r := NewRect(1, 2, 3, 4)
	assert.Equal(t, NewRect(2, 1, 4, 3), r.Swapped())
	assert.Equal(t, r, r.Swapped().Swapped())
}

func TestRect_Image(t *testing.T) {
	r := NewRect(10.4, 20.6, 30.2, 40.5)
	assert.Equal(t, image.Rect(10, 21, 41, 61), r.Image())
}

func TestSize_Valid(t *testing.T) {
	assert.True(t, Size{Width: 1, Height: 1}.Valid())
	assert.False(t, Size{Width: 0, Height: 1}.Valid())
	assert.False(t, Size{Width: 1, Height: -2}.Valid())
	assert.False(t, Size{}.Valid())
}
