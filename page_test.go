package blacksky

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_DefaultLayout(t *testing.T) {
	page := NewPage(1000, 800, DefaultContainers()...)

	galaxy, ok := page.Container(GalaxyContainer)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 300, Y: 160, Width: 400, Height: 400}, galaxy)

	opening, ok := page.Container("opening")
	require.True(t, ok)
	assert.InDelta(t, 950-150, opening.X, 1e-9)
	assert.InDelta(t, 80, opening.Y, 1e-9)
	assert.Equal(t, 150.0, opening.Width)

	_, ok = page.Container("missing")
	assert.False(t, ok)
}

func TestPage_GalaxyShrinksOnNarrowWindow(t *testing.T) {
	page := NewPage(300, 600, DefaultContainers()...)
	galaxy, _ := page.Container(GalaxyContainer)
	assert.InDelta(t, 240, galaxy.Width, 1e-9)
	assert.InDelta(t, 240, galaxy.Height, 1e-9)
}

func TestPage_ResizeFlag(t *testing.T) {
	page := NewPage(640, 480)
	assert.True(t, page.TakeResized())
	assert.False(t, page.TakeResized())

	page.Resize(800, 600)
	assert.True(t, page.TakeResized())
	assert.Equal(t, 800, page.Width)
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	assert.True(t, r.Contains(10, 10))
	assert.True(t, r.Contains(29.9, 29.9))
	assert.False(t, r.Contains(30, 15))
	x, y := r.Center()
	assert.Equal(t, 20.0, x)
	assert.Equal(t, 20.0, y)
}
