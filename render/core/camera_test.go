package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestProjectToViewport_Origin(t *testing.T) {
	vp := Viewport{X: 100, Y: 50, Width: 400, Height: 400}
	mvp := Projection(75, vp.Aspect(), 0.1, 1000).Mul4(View(8))

	x, y, ok := ProjectToViewport(mvp, mgl32.Vec3{}, vp)
	assert.True(t, ok)
	assert.InDelta(t, 300, x, 1e-3)
	assert.InDelta(t, 250, y, 1e-3)

	// Up in world is up on screen.
	_, yUp, ok := ProjectToViewport(mvp, mgl32.Vec3{0, 1, 0}, vp)
	assert.True(t, ok)
	assert.Less(t, yUp, y)
}

func TestProjectToViewport_BehindCamera(t *testing.T) {
	vp := Viewport{Width: 100, Height: 100}
	mvp := Projection(75, 1, 0.1, 1000).Mul4(View(2))
	_, _, ok := ProjectToViewport(mvp, mgl32.Vec3{0, 0, 5}, vp)
	assert.False(t, ok)
}

func TestWebGPUClipCorrection(t *testing.T) {
	proj := WebGPUClipCorrection.Mul4(Projection(75, 1, 0.1, 1000))

	near := proj.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, -1000, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)
}

func TestAttenuatedPointSize(t *testing.T) {
	assert.Equal(t, float32(1), AttenuatedPointSize(0.02, 400, 8))
	assert.InDelta(t, 10, AttenuatedPointSize(0.5, 400, 10), 1e-5)
	assert.Equal(t, float32(1), AttenuatedPointSize(1, 400, 0))
}

func TestFrame_Reset(t *testing.T) {
	f := &Frame{}
	f.Points = append(f.Points, PointBatch{Label: "a"})
	f.Overlay = append(f.Overlay, Sprite{})
	assert.False(t, f.Empty())

	f.Reset(3, 640, 480)
	assert.True(t, f.Empty())
	assert.Equal(t, uint64(3), f.Number)
	assert.Equal(t, 640, f.Width)
}
