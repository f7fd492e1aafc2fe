package blacksky

// TwinkleComponent is one background particle. Base is a fraction of the
// window so particles follow resizes.
type TwinkleComponent struct {
	BaseX, BaseY float32
	Size         float32 // diameter in pixels
	Period       float32 // seconds
	Delay        float32
	Age          float32
}

// offset returns the float animation at the particle's age: s is 0 at rest
// and 1 at mid-period.
func (tw *TwinkleComponent) offset() (s float32) {
	if tw.Age < tw.Delay || tw.Period <= 0 {
		return 0
	}
	t := tw.Age - tw.Delay
	p := t/tw.Period - float32(int(t/tw.Period))
	if p < 0.5 {
		return easeInOut(p * 2)
	}
	return easeInOut(2 - p*2)
}

var twinkleColor = [3]float32{0, 212.0 / 255, 1}

const (
	twinkleAlpha      = 0.6
	twinkleMinOpacity = 0.3
	twinkleMaxOpacity = 0.8
	twinkleDriftX     = 10
	twinkleDriftY     = -20
)

// TwinkleField is the background particle layer.
type TwinkleField struct {
	Count    int
	entities []EntityId
}

func NewTwinkleField(count int) *TwinkleField {
	return &TwinkleField{Count: max(count, 0)}
}

func (f *TwinkleField) Entities() []EntityId {
	return f.entities
}

// Create spawns Count particles with random placement, size and timing.
func (f *TwinkleField) Create(cmd *Commands, rng Source) {
	for i := 0; i < f.Count; i++ {
		tw := TwinkleComponent{
			BaseX:  float32(rng.Float64()),
			BaseY:  float32(rng.Float64()),
			Size:   float32(rng.Float64()*3 + 1),
			Period: float32(rng.Float64()*3 + 2),
			Delay:  float32(rng.Float64() * 2),
		}
		eid := cmd.AddEntity(tw, SpriteComponent{
			Radius: tw.Size / 2,
			Glow:   10,
			Layer:  LayerBackground,
		})
		f.entities = append(f.entities, eid)
	}
}

func (f *TwinkleField) Destroy(cmd *Commands) {
	for _, eid := range f.entities {
		cmd.RemoveEntity(eid)
	}
	f.entities = nil
}

func twinkleSystem(t *Time, page *Page, cmd *Commands) {
	dt := t.DeltaSeconds()
	w, h := float32(page.Width), float32(page.Height)
	MakeQuery2[TwinkleComponent, SpriteComponent](cmd).Map(func(eid EntityId, tw *TwinkleComponent, sp *SpriteComponent) bool {
		tw.Age += dt
		s := tw.offset()
		opacity := twinkleMinOpacity + (twinkleMaxOpacity-twinkleMinOpacity)*s
		sp.X = tw.BaseX*w + twinkleDriftX*s
		sp.Y = tw.BaseY*h + twinkleDriftY*s
		sp.Color = [4]float32{twinkleColor[0], twinkleColor[1], twinkleColor[2], twinkleAlpha * opacity}
		return true
	})
}
