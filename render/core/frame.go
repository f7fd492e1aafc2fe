package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Viewport is a pixel rectangle inside the window, origin top-left.
type Viewport struct {
	X, Y, Width, Height float32
}

func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

func (v Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

// PointBatch is one point cloud. Key identifies the immutable vertex data so
// renderers can upload it once.
type PointBatch struct {
	Key       string
	Label     string
	Viewport  Viewport
	MVP       mgl32.Mat4
	Positions []float32
	Colors    []float32
	SizePx    float32
	Opacity   float32
	Additive  bool
}

func (b *PointBatch) Len() int { return len(b.Positions) / 3 }

// LineBatch is one indexed line list drawn in a single colour.
type LineBatch struct {
	Key       string
	Label     string
	Viewport  Viewport
	MVP       mgl32.Mat4
	Positions []float32
	Indices   []uint32
	Color     [3]float32
	Opacity   float32
}

// Sprite is a soft disc in window pixels with an optional halo.
type Sprite struct {
	X, Y   float32
	Radius float32
	Glow   float32
	Color  [4]float32
}

// Frame is everything a renderer needs to draw one frame, in draw order:
// background sprites, point batches, line batches, overlay sprites.
type Frame struct {
	Number        uint64
	Width, Height int
	Clear         [4]float32

	Background []Sprite
	Points     []PointBatch
	Lines      []LineBatch
	Overlay    []Sprite
}

// Reset empties the frame keeping its allocations.
func (f *Frame) Reset(number uint64, width, height int) {
	f.Number = number
	f.Width, f.Height = width, height
	f.Background = f.Background[:0]
	f.Points = f.Points[:0]
	f.Lines = f.Lines[:0]
	f.Overlay = f.Overlay[:0]
}

func (f *Frame) Empty() bool {
	return len(f.Background) == 0 && len(f.Points) == 0 && len(f.Lines) == 0 && len(f.Overlay) == 0
}
