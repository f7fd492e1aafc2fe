package blacksky

import (
	"math"

	"github.com/chewxy/math32"
)

// Source is the random source a generator draws from. *rand.Rand from
// math/rand and math/rand/v2 both satisfy it.
type Source interface {
	Float64() float64
}

// GalaxyShape parameterises the flattened disc. Colour channel ranges are
// half-open; radius and thickness are closed.
type GalaxyShape struct {
	RadiusMax float32 `toml:"radius_max" yaml:"radius_max"`
	Thickness float32 `toml:"thickness" yaml:"thickness"`
	RedMin    float32 `toml:"red_min" yaml:"red_min"`
	RedMax    float32 `toml:"red_max" yaml:"red_max"`
	GreenMin  float32 `toml:"green_min" yaml:"green_min"`
	GreenMax  float32 `toml:"green_max" yaml:"green_max"`
	Blue      float32 `toml:"blue" yaml:"blue"`
}

func DefaultGalaxyShape() GalaxyShape {
	return GalaxyShape{
		RadiusMax: 5,
		Thickness: 2,
		RedMin:    0,
		RedMax:    0.6,
		GreenMin:  0.8,
		GreenMax:  1.0,
		Blue:      1.0,
	}
}

// PointField holds N points as two flat xyz / rgb buffers of length 3N.
// It is never resized after generation.
type PointField struct {
	Positions []float32
	Colors    []float32
}

func (f *PointField) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Positions) / 3
}

// Point returns the position and colour of point i.
func (f *PointField) Point(i int) (pos, color [3]float32) {
	copy(pos[:], f.Positions[i*3:i*3+3])
	copy(color[:], f.Colors[i*3:i*3+3])
	return
}

// GeneratePointField builds count points of the default galaxy disc.
func GeneratePointField(count int, rng Source) *PointField {
	return DefaultGalaxyShape().Generate(count, rng)
}

// Generate samples every point independently. A non-positive count yields an
// empty field.
func (s GalaxyShape) Generate(count int, rng Source) *PointField {
	if count < 0 {
		count = 0
	}
	field := &PointField{
		Positions: make([]float32, count*3),
		Colors:    make([]float32, count*3),
	}

	halfThickness := float64(s.Thickness) / 2
	for i := 0; i < count; i++ {
		radius := float32(rng.Float64() * float64(s.RadiusMax))
		angle := uniformBelow(rng, 0, 2*math.Pi)

		p := field.Positions[i*3 : i*3+3]
		p[0] = math32.Cos(angle) * radius
		p[1] = float32(-halfThickness + rng.Float64()*2*halfThickness)
		p[2] = math32.Sin(angle) * radius

		c := field.Colors[i*3 : i*3+3]
		c[0] = uniformBelow(rng, s.RedMin, s.RedMax)
		c[1] = uniformBelow(rng, s.GreenMin, s.GreenMax)
		c[2] = s.Blue
	}
	return field
}

// uniformBelow samples [lo, hi). Rounding to float32 can land exactly on hi,
// so that case is pulled back to the largest float32 below it.
func uniformBelow(rng Source, lo, hi float32) float32 {
	v := float32(float64(lo) + rng.Float64()*float64(hi-lo))
	if v >= hi && hi > lo {
		return math.Nextafter32(hi, lo)
	}
	return v
}
