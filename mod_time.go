package blacksky

import (
	"time"
)

// Time is the frame clock. Dt is the wall time since the previous frame,
// or the fixed step when TimeModule.FixedStep is set.
type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64

	fixedStep time.Duration
}

// DeltaSeconds returns Dt in seconds.
func (t *Time) DeltaSeconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct {
	// FixedStep makes every frame advance by exactly this much. Used by the
	// snapshot renderer and tests for reproducible animation.
	FixedStep time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:      time.Now(),
		fixedStep: mod.FixedStep,
	})
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(t *Time) {
	t.Frame++
	if t.fixedStep > 0 {
		t.Dt = t.fixedStep
		t.Time = t.Time.Add(t.fixedStep)
		return
	}

	now := time.Now()
	t.Dt = now.Sub(t.Time)
	t.Time = now
}
