package raster

import (
	"testing"

	"github.com/blacksky-gfx/blacksky/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testMVP(vp core.Viewport) mgl32.Mat4 {
	return core.Projection(75, vp.Aspect(), 0.1, 1000).Mul4(core.View(2))
}

func TestCanvas_ClearIsOpaqueBlack(t *testing.T) {
	c := New(8, 8)
	c.Clear([4]float32{0, 0, 0, 1})
	r, g, b, a := c.Image().At(3, 3).RGBA()
	assert.Zero(t, r+g+b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestCanvas_PointAtCentre(t *testing.T) {
	c := New(100, 100)
	vp := core.Viewport{Width: 100, Height: 100}
	f := &core.Frame{Clear: [4]float32{0, 0, 0, 1}}
	f.Points = append(f.Points, core.PointBatch{
		Viewport:  vp,
		MVP:       testMVP(vp),
		Positions: []float32{0, 0, 0},
		Colors:    []float32{0, 0.5, 1},
		SizePx:    1,
		Opacity:   1,
		Additive:  true,
	})
	c.DrawFrame(f)

	px := c.Image().RGBAAt(50, 50)
	assert.Equal(t, uint8(255), px.B)
	assert.Zero(t, px.R)
	assert.Zero(t, c.Image().RGBAAt(10, 10).B)
}

func TestCanvas_AdditivePointsSaturate(t *testing.T) {
	c := New(10, 10)
	c.Clear([4]float32{0, 0, 0, 1})
	vp := core.Viewport{Width: 10, Height: 10}
	b := &core.PointBatch{
		Viewport:  vp,
		MVP:       testMVP(vp),
		Positions: []float32{0, 0, 0, 0, 0, 0, 0, 0, 0},
		Colors:    []float32{0.5, 0, 0, 0.5, 0, 0, 0.5, 0, 0},
		SizePx:    1,
		Opacity:   1,
		Additive:  true,
	}
	c.DrawPoints(b)
	assert.Equal(t, uint8(255), c.Image().RGBAAt(5, 5).R)
}

func TestCanvas_ViewportClips(t *testing.T) {
	c := New(100, 100)
	c.Clear([4]float32{0, 0, 0, 1})
	vp := core.Viewport{Width: 50, Height: 100}
	c.DrawLines(&core.LineBatch{
		Viewport:  vp,
		MVP:       testMVP(vp),
		Positions: []float32{-10, 0, 0, 10, 0, 0},
		Indices:   []uint32{0, 1},
		Color:     [3]float32{1, 1, 1},
		Opacity:   1,
	})

	assert.Equal(t, uint8(255), c.Image().RGBAAt(25, 50).G)
	assert.Zero(t, c.Image().RGBAAt(75, 50).G)
}

func TestCanvas_SpriteIsRoundAndClipped(t *testing.T) {
	c := New(40, 40)
	c.Clear([4]float32{0, 0, 0, 1})
	c.DrawSprite(core.Sprite{X: 20, Y: 20, Radius: 6, Color: [4]float32{1, 0, 0, 1}})

	assert.Greater(t, c.Image().RGBAAt(20, 20).R, uint8(200))
	assert.Zero(t, c.Image().RGBAAt(20+6+2, 20).R)
	// Corner of the bounding box lies outside the disc.
	assert.Less(t, c.Image().RGBAAt(15, 15).R, uint8(128))

	assert.NotPanics(t, func() {
		c.DrawSprite(core.Sprite{X: -2, Y: 39, Radius: 5, Glow: 4, Color: [4]float32{1, 1, 1, 0.5}})
	})
}

func TestCanvas_Resize(t *testing.T) {
	c := New(4, 4)
	c.Resize(8, 2)
	w, h := c.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 2, h)
}
