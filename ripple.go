package blacksky

const (
	rippleLifetime    = 0.6
	rippleStartRadius = 5
	rippleEndRadius   = 50
	rippleAlpha       = 0.5
)

type RippleComponent struct{}

// RippleEmitter spawns an expanding ring at every click. Ripples remove
// themselves through their LifetimeComponent.
type RippleEmitter struct {
	spawned []EntityId
}

func NewRippleEmitter() *RippleEmitter {
	return &RippleEmitter{}
}

func (re *RippleEmitter) Spawn(cmd *Commands, x, y float64) EntityId {
	live := re.spawned[:0]
	for _, eid := range re.spawned {
		if cmd.HasEntity(eid) || cmd.IsPending(eid) {
			live = append(live, eid)
		}
	}
	re.spawned = live

	eid := cmd.AddEntity(
		RippleComponent{},
		SpriteComponent{
			X:      float32(x),
			Y:      float32(y),
			Radius: rippleStartRadius,
			Color:  [4]float32{1, 1, 1, rippleAlpha},
			Layer:  LayerOverlay,
		},
		LifetimeComponent{TimeLeft: rippleLifetime, Total: rippleLifetime},
	)
	re.spawned = append(re.spawned, eid)
	return eid
}

func (re *RippleEmitter) Destroy(cmd *Commands) {
	for _, eid := range re.spawned {
		cmd.RemoveEntity(eid)
	}
	re.spawned = nil
}

// rippleRadius grows from the start to the end radius with ease-out.
func rippleRadius(progress float32) float32 {
	return rippleStartRadius + (rippleEndRadius-rippleStartRadius)*easeOut(progress)
}

func rippleSpawnSystem(input *Input, fx *Effects, cmd *Commands) {
	if fx.Ripples == nil {
		return
	}
	for _, c := range input.Clicks {
		fx.Ripples.Spawn(cmd, c[0], c[1])
	}
}

func rippleGrowSystem(cmd *Commands) {
	MakeQuery3[RippleComponent, LifetimeComponent, SpriteComponent](cmd).Map(func(eid EntityId, _ *RippleComponent, lt *LifetimeComponent, sp *SpriteComponent) bool {
		p := lt.Progress()
		sp.Radius = rippleRadius(p)
		sp.Color[3] = rippleAlpha * (1 - easeOut(p))
		return true
	})
}
