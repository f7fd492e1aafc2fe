package blacksky

// Input is the pointer state for the current frame, written by the active
// renderer's host (GLFW callbacks or terminal events) in PreUpdate.
// Coordinates are window pixels with the origin at the top-left.
type Input struct {
	PointerX, PointerY float64
	PointerInside      bool

	// Edge state, cleared at the end of every frame.
	PointerMoved bool
	Clicks       [][2]float64
}

// MovePointer records a pointer position for this frame.
func (in *Input) MovePointer(x, y float64) {
	if in.PointerInside && x == in.PointerX && y == in.PointerY {
		return
	}
	in.PointerX, in.PointerY = x, y
	in.PointerInside = true
	in.PointerMoved = true
}

// LeaveWindow marks the pointer as outside the window.
func (in *Input) LeaveWindow() {
	in.PointerInside = false
}

func (in *Input) Click(x, y float64) {
	in.Clicks = append(in.Clicks, [2]float64{x, y})
}

// PointerIn reports whether the pointer is inside r.
func (in *Input) PointerIn(r Rect) bool {
	return in.PointerInside && r.Contains(in.PointerX, in.PointerY)
}

type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputResetSystem).
			InStage(Finale),
	)
}

func inputResetSystem(input *Input) {
	input.PointerMoved = false
	input.Clicks = input.Clicks[:0]
}
