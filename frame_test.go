package blacksky

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyApp(t *testing.T, defs []VisualDef, fx EffectsConfig) *App {
	t.Helper()
	app := newHeadlessApp(t,
		VisualsModule{Defs: defs, Seed: 7},
		EffectsModule{Config: fx, Seed: 7},
		FrameModule{},
	)
	ensureRendererReady(app).Fire()
	return app
}

func TestFrameSystem_GalaxyAndShapes(t *testing.T) {
	app := readyApp(t, nil, EffectsConfig{})
	app.RunFrames(1)

	frame := &mustResource[FrameOutput](t, app).Frame
	assert.Equal(t, uint64(1), frame.Number)
	assert.Equal(t, 1000, frame.Width)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, frame.Clear)

	require.Len(t, frame.Points, 1)
	galaxy := frame.Points[0]
	assert.Equal(t, KindGalaxy, galaxy.Label)
	assert.Equal(t, 5000, galaxy.Len())
	assert.True(t, galaxy.Additive)
	assert.Equal(t, float32(300), galaxy.Viewport.X)
	assert.Equal(t, float32(400), galaxy.Viewport.Width)
	assert.Equal(t, float32(1), galaxy.SizePx, "0.02 units at depth 8 in 400px is under a pixel")

	require.Len(t, frame.Lines, 3)
	labels := []string{frame.Lines[0].Label, frame.Lines[1].Label, frame.Lines[2].Label}
	assert.Equal(t, []string{"cube", "sphere", "torus"}, labels)
	assert.Equal(t, float32(0.3), frame.Lines[0].Opacity)
}

func TestFrameSystem_ZeroPointGalaxyDrawsNothing(t *testing.T) {
	def := DefaultGalaxyDef()
	def.Count = 0
	app := readyApp(t, []VisualDef{def}, EffectsConfig{})
	app.RunFrames(1)

	assert.Equal(t, 1, countInstances(app.Commands()))
	frame := &mustResource[FrameOutput](t, app).Frame
	assert.Empty(t, frame.Points)
	assert.True(t, frame.Empty())
}

func TestFrameSystem_NothingBeforeReady(t *testing.T) {
	app := newHeadlessApp(t, VisualsModule{Seed: 1}, EffectsModule{Seed: 1}, FrameModule{})
	app.RunFrames(3)

	frame := &mustResource[FrameOutput](t, app).Frame
	assert.Empty(t, frame.Points)
	assert.Empty(t, frame.Lines)
}

func TestFrameSystem_SpritesAreLayered(t *testing.T) {
	cfg := DefaultEffectsConfig()
	cfg.TwinkleCount = 20
	app := readyApp(t, []VisualDef{}, cfg)
	app.RunFrames(1)

	input := mustResource[Input](t, app)
	input.MovePointer(100, 100)
	input.Click(100, 100)
	app.RunFrames(2)

	frame := &mustResource[FrameOutput](t, app).Frame
	assert.NotEmpty(t, frame.Background, "twinkle particles sit behind the instances")
	assert.NotEmpty(t, frame.Overlay, "trail dots and ripples sit on top")
	for _, s := range append(frame.Background, frame.Overlay...) {
		assert.Greater(t, s.Radius, float32(0))
		assert.Greater(t, s.Color[3], float32(0))
	}
	assert.True(t, mustResource[Redraw](t, app).Take())
}

func TestFrameSystem_TiltRotatesModel(t *testing.T) {
	def := DefaultShapeDef("cube", "opening", PrimitiveCube)
	def.SpinX, def.SpinY = 0, 0
	app := readyApp(t, []VisualDef{def}, EffectsConfig{Tilt: true})
	app.RunFrames(1)
	before := mustResource[FrameOutput](t, app).Frame.Lines[0].MVP

	rect, ok := mustResource[Page](t, app).Container("opening")
	require.True(t, ok)
	mustResource[Input](t, app).MovePointer(rect.X+5, rect.Y+5)
	app.RunFrames(1)
	after := mustResource[FrameOutput](t, app).Frame.Lines[0].MVP

	assert.NotEqual(t, before, after)
}
