package blacksky

// LifetimeComponent removes its entity once TimeLeft (seconds) runs out.
type LifetimeComponent struct {
	TimeLeft float32
	Total    float32
}

// Progress returns how much of the lifetime has elapsed, in [0,1].
func (lt *LifetimeComponent) Progress() float32 {
	if lt.Total <= 0 {
		return 1
	}
	p := 1 - lt.TimeLeft/lt.Total
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(lifetimeSystem).
			InStage(PostUpdate),
	)
}

func lifetimeSystem(t *Time, cmd *Commands) {
	dt := t.DeltaSeconds()
	if dt <= 0 {
		return
	}
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= dt
		if lt.TimeLeft <= 0 {
			cmd.Logger().Debugf("Lifetime expired for entity %v", eid)
			cmd.RemoveEntity(eid)
		}
		return true
	})
}
