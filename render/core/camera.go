package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Projection is an OpenGL style perspective, clip z in [-w, w].
func Projection(fovYDeg, aspect, near, far float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(fovYDeg), aspect, near, far)
}

// View looks at the origin from distance units down +z.
func View(distance float32) mgl32.Mat4 {
	return mgl32.LookAtV(
		mgl32.Vec3{0, 0, distance},
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 1, 0},
	)
}

// WebGPUClipCorrection remaps clip z from [-w, w] to [0, w].
var WebGPUClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// AttenuatedPointSize converts a world-space point size to pixels at the
// given view depth: half the viewport height per unit at depth 1.
func AttenuatedPointSize(size, viewportHeight, depth float32) float32 {
	if depth <= 0 {
		return 1
	}
	px := size * viewportHeight / 2 / depth
	if px < 1 {
		return 1
	}
	return px
}

// ProjectToViewport maps a model-space point through mvp into window pixels.
// ok is false for points behind the camera or outside the depth range.
func ProjectToViewport(mvp mgl32.Mat4, p mgl32.Vec3, vp Viewport) (x, y float32, ok bool) {
	clip := mvp.Mul4x1(p.Vec4(1.0))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1.0 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, false
	}

	x = vp.X + (ndc.X()*0.5+0.5)*vp.Width
	y = vp.Y + (1.0-(ndc.Y()*0.5+0.5))*vp.Height
	return x, y, true
}
