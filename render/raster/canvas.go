// Package raster draws a core.Frame in software. The terminal and snapshot
// renderers share it.
package raster

import (
	"image"
	"image/color"

	"github.com/blacksky-gfx/blacksky/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// circleK places cubic control points for a quarter circle.
const circleK = 0.5522847

type Canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func New(width, height int) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		z:   vector.NewRasterizer(1, 1),
	}
}

func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the canvas if the size changed.
func (c *Canvas) Resize(width, height int) {
	if w, h := c.Size(); w == width && h == height {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func (c *Canvas) Clear(col [4]float32) {
	fill := color.RGBA{toByte(col[0] * col[3]), toByte(col[1] * col[3]), toByte(col[2] * col[3]), toByte(col[3])}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
}

// DrawFrame clears and draws every layer of f in order.
func (c *Canvas) DrawFrame(f *core.Frame) {
	c.Clear(f.Clear)
	for _, s := range f.Background {
		c.DrawSprite(s)
	}
	for i := range f.Points {
		c.DrawPoints(&f.Points[i])
	}
	for i := range f.Lines {
		c.DrawLines(&f.Lines[i])
	}
	for _, s := range f.Overlay {
		c.DrawSprite(s)
	}
}

func (c *Canvas) clipRect(vp core.Viewport) image.Rectangle {
	r := image.Rect(int(vp.X), int(vp.Y), int(vp.X+vp.Width), int(vp.Y+vp.Height))
	return r.Intersect(c.img.Bounds())
}

// blend mixes rgb into the pixel at (x, y) with weight alpha, either
// additively (saturating) or as source-over.
func (c *Canvas) blend(x, y int, rgb [3]float32, alpha float32, additive bool) {
	i := c.img.PixOffset(x, y)
	px := c.img.Pix[i : i+4 : i+4]
	for ch := 0; ch < 3; ch++ {
		src := rgb[ch] * alpha * 255
		dst := float32(px[ch])
		var v float32
		if additive {
			v = dst + src
		} else {
			v = dst*(1-alpha) + src
		}
		if v > 255 {
			v = 255
		}
		px[ch] = uint8(v + 0.5)
	}
	if !additive {
		a := float32(px[3])*(1-alpha) + 255*alpha
		px[3] = uint8(min(a, 255) + 0.5)
	} else if px[3] < 255 {
		a := float32(px[3]) + 255*alpha
		px[3] = uint8(min(a, 255) + 0.5)
	}
}

// DrawPoints splats each point as a square of SizePx pixels.
func (c *Canvas) DrawPoints(b *core.PointBatch) {
	clip := c.clipRect(b.Viewport)
	if clip.Empty() {
		return
	}
	half := int(b.SizePx / 2)
	for i := 0; i < b.Len(); i++ {
		p := mgl32.Vec3{b.Positions[i*3], b.Positions[i*3+1], b.Positions[i*3+2]}
		x, y, ok := core.ProjectToViewport(b.MVP, p, b.Viewport)
		if !ok {
			continue
		}
		rgb := [3]float32{b.Colors[i*3], b.Colors[i*3+1], b.Colors[i*3+2]}
		cx, cy := int(x), int(y)
		for py := cy - half; py <= cy+half; py++ {
			for px := cx - half; px <= cx+half; px++ {
				if image.Pt(px, py).In(clip) {
					c.blend(px, py, rgb, b.Opacity, b.Additive)
				}
			}
		}
	}
}

// DrawLines draws each index pair with Bresenham's algorithm. Edges with an
// endpoint behind the camera are skipped.
func (c *Canvas) DrawLines(b *core.LineBatch) {
	clip := c.clipRect(b.Viewport)
	if clip.Empty() {
		return
	}
	n := len(b.Positions) / 3
	projected := make([]image.Point, n)
	visible := make([]bool, n)
	for i := 0; i < n; i++ {
		p := mgl32.Vec3{b.Positions[i*3], b.Positions[i*3+1], b.Positions[i*3+2]}
		x, y, ok := core.ProjectToViewport(b.MVP, p, b.Viewport)
		projected[i] = image.Pt(int(x), int(y))
		visible[i] = ok
	}
	for i := 0; i+1 < len(b.Indices); i += 2 {
		a, e := b.Indices[i], b.Indices[i+1]
		if int(a) >= n || int(e) >= n || !visible[a] || !visible[e] {
			continue
		}
		c.line(projected[a], projected[e], clip, b.Color, b.Opacity)
	}
}

func (c *Canvas) line(p0, p1 image.Point, clip image.Rectangle, rgb [3]float32, alpha float32) {
	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}
	err := dx + dy
	x, y := p0.X, p0.Y
	for {
		if image.Pt(x, y).In(clip) {
			c.blend(x, y, rgb, alpha, false)
		}
		if x == p1.X && y == p1.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DrawSprite draws an anti-aliased disc, with a faint halo when Glow is set.
func (c *Canvas) DrawSprite(s core.Sprite) {
	if s.Glow > 0 {
		c.disc(s.X, s.Y, s.Radius+s.Glow, [4]float32{s.Color[0], s.Color[1], s.Color[2], s.Color[3] * 0.25})
	}
	c.disc(s.X, s.Y, s.Radius, s.Color)
}

func (c *Canvas) disc(cx, cy, r float32, col [4]float32) {
	if r <= 0 || col[3] <= 0 {
		return
	}
	box := image.Rect(int(cx-r)-1, int(cy-r)-1, int(cx+r)+2, int(cy+r)+2)
	clipped := box.Intersect(c.img.Bounds())
	if clipped.Empty() {
		return
	}

	// Rasterise a coverage mask in box-local coordinates, then composite the
	// part that lands on the canvas.
	ox, oy := cx-float32(box.Min.X), cy-float32(box.Min.Y)
	k := r * circleK
	z := c.z
	z.Reset(box.Dx(), box.Dy())
	z.MoveTo(ox+r, oy)
	z.CubeTo(ox+r, oy+k, ox+k, oy+r, ox, oy+r)
	z.CubeTo(ox-k, oy+r, ox-r, oy+k, ox-r, oy)
	z.CubeTo(ox-r, oy-k, ox-k, oy-r, ox, oy-r)
	z.CubeTo(ox+k, oy-r, ox+r, oy-k, ox+r, oy)
	z.ClosePath()
	z.DrawOp = draw.Src

	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	src := image.NewUniform(color.NRGBA{toByte(col[0]), toByte(col[1]), toByte(col[2]), toByte(col[3])})
	draw.DrawMask(c.img, clipped, src, image.Point{}, mask, clipped.Min.Sub(box.Min), draw.Over)
}
