package blacksky

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertGalaxyBounds(t *testing.T, field *PointField) {
	t.Helper()
	for i := 0; i < field.Len(); i++ {
		pos, col := field.Point(i)
		for _, v := range append(pos[:], col[:]...) {
			require.False(t, math.IsNaN(float64(v)), "NaN at point %d", i)
		}

		radius := math.Hypot(float64(pos[0]), float64(pos[2]))
		assert.LessOrEqual(t, radius, 5.0+1e-5, "radius of point %d", i)
		assert.GreaterOrEqual(t, pos[1], float32(-1))
		assert.LessOrEqual(t, pos[1], float32(1))

		assert.GreaterOrEqual(t, col[0], float32(0))
		assert.Less(t, col[0], float32(0.6))
		assert.GreaterOrEqual(t, col[1], float32(0.8))
		assert.Less(t, col[1], float32(1.0))
		assert.Equal(t, float32(1.0), col[2])
	}
}

func TestGeneratePointField_CountsAndBounds(t *testing.T) {
	for _, count := range []int{1, 7, 1000} {
		field := GeneratePointField(count, rand.New(rand.NewSource(int64(count))))
		assert.Equal(t, count, field.Len())
		assert.Len(t, field.Positions, count*3)
		assert.Len(t, field.Colors, count*3)
		assertGalaxyBounds(t, field)
	}
}

func TestGeneratePointField_TwoIndependentSources(t *testing.T) {
	a := GeneratePointField(5000, rand.New(rand.NewSource(1)))
	b := GeneratePointField(5000, rand.New(rand.NewSource(2)))

	require.Len(t, a.Positions, 15000)
	require.Len(t, b.Positions, 15000)
	assertGalaxyBounds(t, a)
	assertGalaxyBounds(t, b)
	assert.NotEqual(t, a.Positions, b.Positions)
}

func TestGeneratePointField_SeededIsReproducible(t *testing.T) {
	a := GeneratePointField(200, rand.New(rand.NewSource(42)))
	b := GeneratePointField(200, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestGeneratePointField_ZeroAndNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, count := range []int{0, -5} {
		field := GeneratePointField(count, rng)
		require.NotNil(t, field)
		assert.Equal(t, 0, field.Len())
		assert.Empty(t, field.Positions)
		assert.Empty(t, field.Colors)
	}
}

// constSource always returns the same value.
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func TestUniformBelow_ExcludesUpperBound(t *testing.T) {
	// 1-2^-53 rounds to 1 in float32, which would land on hi.
	v := uniformBelow(constSource(math.Nextafter(1, 0)), 0.8, 1.0)
	assert.Less(t, v, float32(1.0))
	assert.Greater(t, v, float32(0.99))

	assert.Equal(t, float32(0.8), uniformBelow(constSource(0), 0.8, 1.0))
}

func TestGalaxyShape_Custom(t *testing.T) {
	shape := DefaultGalaxyShape()
	shape.RadiusMax = 1
	shape.Thickness = 0
	shape.Blue = 0.5

	field := shape.Generate(100, rand.New(rand.NewSource(9)))
	for i := 0; i < field.Len(); i++ {
		pos, col := field.Point(i)
		assert.LessOrEqual(t, math.Hypot(float64(pos[0]), float64(pos[2])), 1.0+1e-6)
		assert.Equal(t, float32(0), pos[1])
		assert.Equal(t, float32(0.5), col[2])
	}
}
