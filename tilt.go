package blacksky

import (
	"github.com/go-gl/mathgl/mgl32"
)

// tiltDivisor turns pixels from the viewport centre into degrees.
const tiltDivisor = 10

// TiltComponent leans an instance toward the pointer while it hovers the
// instance's viewport. It is applied on top of the spin orientation.
type TiltComponent struct {
	AngleX, AngleY float32 // degrees
	Hovered        bool
}

func (tc *TiltComponent) Quat() mgl32.Quat {
	if tc.AngleX == 0 && tc.AngleY == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.AnglesToQuat(mgl32.DegToRad(tc.AngleX), mgl32.DegToRad(tc.AngleY), 0, mgl32.XYZ)
}

func tiltSystem(input *Input, fx *Effects, cmd *Commands) {
	enabled := fx.Config.Tilt
	MakeQuery2[TiltComponent, ViewportComponent](cmd).Map(func(eid EntityId, tc *TiltComponent, vp *ViewportComponent) bool {
		if !enabled || !input.PointerIn(vp.Rect) {
			*tc = TiltComponent{}
			return true
		}
		cx, cy := vp.Rect.Center()
		tc.Hovered = true
		tc.AngleX = float32((input.PointerY - cy) / tiltDivisor)
		tc.AngleY = float32((cx - input.PointerX) / tiltDivisor)
		return true
	})
}
