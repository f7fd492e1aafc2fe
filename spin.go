package blacksky

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RotationMode selects how spin increments relate to time.
type RotationMode int

const (
	// FrameCoupled adds one increment per frame, so angular speed follows the
	// display refresh rate.
	FrameCoupled RotationMode = iota
	// TimeScaled scales each increment by dt*ReferenceRate, so speed is the
	// same at any refresh rate and matches FrameCoupled at ReferenceRate.
	TimeScaled
)

const ReferenceFrameRate = 60

func (m RotationMode) String() string {
	if m == TimeScaled {
		return "time-scaled"
	}
	return "frame-coupled"
}

// SpinTarget accumulates rotation angles in radians. Angles only grow by the
// increments passed to Tick and are never reset or wrapped.
type SpinTarget struct {
	AngleX float64
	AngleY float64
}

func (s *SpinTarget) Tick(incX, incY float64) {
	s.AngleX += incX
	s.AngleY += incY
}

// Orientation returns the XYZ Euler rotation for the current angles.
func (s *SpinTarget) Orientation() mgl32.Quat {
	x := float32(math.Mod(s.AngleX, 2*math.Pi))
	y := float32(math.Mod(s.AngleY, 2*math.Pi))
	return mgl32.AnglesToQuat(x, y, 0, mgl32.XYZ)
}

type SpinComponent struct {
	Target     SpinTarget
	IncrementX float64
	IncrementY float64
}

// SpinAnimator advances spin targets once per frame.
type SpinAnimator struct {
	Mode          RotationMode
	ReferenceRate float64
}

func NewSpinAnimator(mode RotationMode) *SpinAnimator {
	return &SpinAnimator{Mode: mode, ReferenceRate: ReferenceFrameRate}
}

func (a *SpinAnimator) Step(spin *SpinComponent, dt float64) {
	incX, incY := spin.IncrementX, spin.IncrementY
	if a.Mode == TimeScaled {
		rate := a.ReferenceRate
		if rate <= 0 {
			rate = ReferenceFrameRate
		}
		incX *= dt * rate
		incY *= dt * rate
	}
	spin.Target.Tick(incX, incY)
}

// Redraw collects redraw requests for the current frame. Renderers that only
// present on demand take it in Render.
type Redraw struct {
	requested bool
}

func (r *Redraw) Request() { r.requested = true }

// Take reports whether a redraw was requested and clears the request.
func (r *Redraw) Take() bool {
	req := r.requested
	r.requested = false
	return req
}

func ensureRedraw(app *App) *Redraw {
	if redraw, ok := Resource[Redraw](app); ok {
		return redraw
	}
	redraw := &Redraw{}
	app.addResources(redraw)
	return redraw
}

type SpinModule struct {
	Mode RotationMode
}

func (mod SpinModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewSpinAnimator(mod.Mode))
	ensureRedraw(app)
	app.UseSystem(System(spinSystem).InStage(Update))
}

func spinSystem(t *Time, animator *SpinAnimator, redraw *Redraw, cmd *Commands) {
	dt := t.Dt.Seconds()
	MakeQuery2[SpinComponent, TransformComponent](cmd).Map(func(eid EntityId, spin *SpinComponent, tr *TransformComponent) bool {
		animator.Step(spin, dt)
		tr.Rotation = spin.Target.Orientation()
		redraw.Request()
		return true
	})
}
