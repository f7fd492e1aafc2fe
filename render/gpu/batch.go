package gpu

import (
	"github.com/blacksky-gfx/blacksky/render/core"
)

// scissor is a framebuffer pixel rectangle.
type scissor struct {
	X, Y, W, H uint32
}

// scaleFactors maps window pixels to framebuffer pixels, which differ on
// high density displays.
func scaleFactors(winW, winH, fbW, fbH int) (float32, float32) {
	if winW <= 0 || winH <= 0 {
		return 1, 1
	}
	return float32(fbW) / float32(winW), float32(fbH) / float32(winH)
}

// clampScissor scales vp to framebuffer pixels and clips it to the surface.
// The viewport is drawn with the clipped rectangle, so a container hanging
// off the window edge is squeezed rather than cut.
func clampScissor(vp core.Viewport, sx, sy float32, fbW, fbH int) (scissor, bool) {
	x0 := max(vp.X*sx, 0)
	y0 := max(vp.Y*sy, 0)
	x1 := min((vp.X+vp.Width)*sx, float32(fbW))
	y1 := min((vp.Y+vp.Height)*sy, float32(fbH))
	if x1-x0 < 1 || y1-y0 < 1 {
		return scissor{}, false
	}
	return scissor{X: uint32(x0), Y: uint32(y0), W: uint32(x1 - x0), H: uint32(y1 - y0)}, true
}

func pointUniforms(b *core.PointBatch, sc scissor, scale float32) batchUniforms {
	return batchUniforms{
		MVP:    core.WebGPUClipCorrection.Mul4(b.MVP),
		Params: [4]float32{float32(sc.W), float32(sc.H), b.SizePx * scale, b.Opacity},
	}
}

func lineUniforms(b *core.LineBatch) batchUniforms {
	return batchUniforms{
		MVP:    core.WebGPUClipCorrection.Mul4(b.MVP),
		Params: [4]float32{b.Color[0], b.Color[1], b.Color[2], b.Opacity},
	}
}
