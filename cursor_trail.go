package blacksky

const (
	trailLifetime = 0.8
	trailRadius   = 2.5
	trailAlpha    = 0.5
)

type TrailDotComponent struct{}

// CursorTrail spawns a fading dot at every pointer move. Live dots are kept
// oldest first; the oldest is dropped when MaxDots is reached.
type CursorTrail struct {
	MaxDots int
	live    []EntityId
}

func NewCursorTrail(maxDots int) *CursorTrail {
	if maxDots <= 0 {
		maxDots = 256
	}
	return &CursorTrail{MaxDots: maxDots}
}

func (trail *CursorTrail) Live() []EntityId {
	return trail.live
}

// Spawn adds a dot at (x, y).
func (trail *CursorTrail) Spawn(cmd *Commands, x, y float64) EntityId {
	trail.prune(cmd)
	for len(trail.live) >= trail.MaxDots {
		cmd.RemoveEntity(trail.live[0])
		trail.live = trail.live[1:]
	}
	eid := cmd.AddEntity(
		TrailDotComponent{},
		SpriteComponent{
			X:      float32(x),
			Y:      float32(y),
			Radius: trailRadius,
			Color:  [4]float32{twinkleColor[0], twinkleColor[1], twinkleColor[2], trailAlpha},
			Layer:  LayerOverlay,
		},
		LifetimeComponent{TimeLeft: trailLifetime, Total: trailLifetime},
	)
	trail.live = append(trail.live, eid)
	return eid
}

// prune drops expired dots from the front. Dots expire in spawn order.
func (trail *CursorTrail) prune(cmd *Commands) {
	n := 0
	for n < len(trail.live) && !cmd.HasEntity(trail.live[n]) && !cmd.IsPending(trail.live[n]) {
		n++
	}
	trail.live = trail.live[n:]
}

func (trail *CursorTrail) Destroy(cmd *Commands) {
	for _, eid := range trail.live {
		cmd.RemoveEntity(eid)
	}
	trail.live = nil
}

func trailSpawnSystem(input *Input, fx *Effects, cmd *Commands) {
	if fx.Trail == nil || !input.PointerMoved {
		return
	}
	fx.Trail.Spawn(cmd, input.PointerX, input.PointerY)
}

func trailFadeSystem(fx *Effects, cmd *Commands) {
	if fx.Trail != nil {
		fx.Trail.prune(cmd)
	}
	MakeQuery3[TrailDotComponent, LifetimeComponent, SpriteComponent](cmd).Map(func(eid EntityId, _ *TrailDotComponent, lt *LifetimeComponent, sp *SpriteComponent) bool {
		e := easeOut(lt.Progress())
		sp.Radius = trailRadius * (1 - e)
		sp.Color[3] = trailAlpha * (1 - e)
		return true
	})
}
