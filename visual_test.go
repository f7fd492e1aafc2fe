package blacksky

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadlessApp(t *testing.T, modules ...Module) *App {
	t.Helper()
	builder := NewAppBuilder().
		UseModule(TimeModule{FixedStep: time.Second / 60}).
		UseModule(AssetServerModule{}).
		UseModule(PageModule{Width: 1000, Height: 800}).
		UseModule(InputModule{}).
		UseModule(LifecycleModule{}).
		UseModule(SpinModule{})
	for _, m := range modules {
		builder.UseModule(m)
	}
	return builder.Build()
}

func mustResource[T any](t *testing.T, app *App) *T {
	t.Helper()
	res, ok := Resource[T](app)
	require.True(t, ok)
	return res
}

func countInstances(cmd *Commands) int {
	n := 0
	MakeQuery1[VisualInstanceComponent](cmd).Map(func(EntityId, *VisualInstanceComponent) bool {
		n++
		return true
	})
	return n
}

func TestSpawnVisual_MissingContainer(t *testing.T) {
	app := newHeadlessApp(t)
	cmd := app.Commands()
	assets := mustResource[AssetServer](t, app)
	page := mustResource[Page](t, app)

	def := DefaultGalaxyDef()
	def.Container = "nowhere"

	var err error
	require.NotPanics(t, func() {
		_, err = SpawnVisual(cmd, assets, page, rand.New(rand.NewSource(1)), def)
	})
	assert.True(t, errors.Is(err, ErrContainerAbsent))

	app.FlushCommands()
	assert.Zero(t, countInstances(cmd))
	assert.Empty(t, assets.Ids())
}

func TestSpawnVisual_ZeroPointsIsValid(t *testing.T) {
	app := newHeadlessApp(t)
	cmd := app.Commands()
	assets := mustResource[AssetServer](t, app)
	page := mustResource[Page](t, app)

	def := DefaultGalaxyDef()
	def.Count = 0
	eid, err := SpawnVisual(cmd, assets, page, rand.New(rand.NewSource(1)), def)
	require.NoError(t, err)
	app.FlushCommands()

	points, ok := GetComponent[PointsComponent](cmd, eid)
	require.True(t, ok)
	assert.Zero(t, points.Count)

	field, ok := assets.PointField(points.Field)
	require.True(t, ok)
	assert.Zero(t, field.Len())

	require.NotPanics(t, func() { app.RunFrames(3) })
}

func TestSpawnVisual_UnknownKind(t *testing.T) {
	app := newHeadlessApp(t)
	def := DefaultShapeDef("blob", "mind", "blob")
	_, err := SpawnVisual(app.Commands(), mustResource[AssetServer](t, app), mustResource[Page](t, app), rand.New(rand.NewSource(1)), def)
	assert.True(t, errors.Is(err, ErrUnknownPrimitive))
}

func TestDestroyVisual_ReleasesAssets(t *testing.T) {
	app := newHeadlessApp(t)
	cmd := app.Commands()
	assets := mustResource[AssetServer](t, app)

	eid, err := SpawnVisual(cmd, assets, mustResource[Page](t, app), rand.New(rand.NewSource(1)), DefaultShapeDef("cube", "opening", PrimitiveCube))
	require.NoError(t, err)
	app.FlushCommands()
	require.Len(t, assets.Ids(), 1)

	DestroyVisual(cmd, assets, eid)
	app.FlushCommands()

	assert.False(t, cmd.HasEntity(eid))
	assert.Empty(t, assets.Ids())
	assert.Len(t, assets.TakeReleased(), 1)
}

func TestVisualsModule_WaitsForRenderer(t *testing.T) {
	app := newHeadlessApp(t, VisualsModule{Seed: 7})
	cmd := app.Commands()

	app.RunFrames(5)
	assert.Zero(t, countInstances(cmd))

	mustResource[RendererReady](t, app).Fire()
	app.RunFrames(1)
	assert.Equal(t, 4, countInstances(cmd))

	galaxyPoints := 0
	MakeQuery1[PointsComponent](cmd).Map(func(_ EntityId, p *PointsComponent) bool {
		galaxyPoints += p.Count
		return true
	})
	assert.Equal(t, 5000, galaxyPoints)
}

func TestVisualsModule_RendererFailure(t *testing.T) {
	app := newHeadlessApp(t, VisualsModule{Seed: 7})
	cmd := app.Commands()

	mustResource[RendererReady](t, app).Fail(errors.New("no adapter"))
	require.NotPanics(t, func() { app.RunFrames(5) })
	assert.Zero(t, countInstances(cmd))
}

func TestVisualsModule_SkipsAbsentContainers(t *testing.T) {
	app := newHeadlessApp(t, VisualsModule{Seed: 7})
	cmd := app.Commands()

	page := mustResource[Page](t, app)
	var kept []Container
	for _, c := range DefaultContainers() {
		if c.Name != "mind" {
			kept = append(kept, c)
		}
	}
	page.SetContainers(kept)

	mustResource[RendererReady](t, app).Fire()
	app.RunFrames(1)
	assert.Equal(t, 3, countInstances(cmd))
	assert.Len(t, mustResource[VisualSet](t, app).Entities(), 3)
}

func TestVisualsModule_RebuildOnNewDefs(t *testing.T) {
	app := newHeadlessApp(t, VisualsModule{Seed: 7})
	cmd := app.Commands()
	assets := mustResource[AssetServer](t, app)

	mustResource[RendererReady](t, app).Fire()
	app.RunFrames(1)
	require.Equal(t, 4, countInstances(cmd))

	mustResource[VisualSet](t, app).SetDefs([]VisualDef{DefaultGalaxyDef()})
	app.RunFrames(1)
	assert.Equal(t, 1, countInstances(cmd))
	assert.Len(t, assets.Ids(), 1)
}

func TestLayoutSystem_MovesViewports(t *testing.T) {
	app := newHeadlessApp(t, VisualsModule{Seed: 7})
	cmd := app.Commands()
	mustResource[RendererReady](t, app).Fire()
	app.RunFrames(1)

	mustResource[Page](t, app).Resize(300, 600)
	app.RunFrames(1)

	MakeQuery2[VisualInstanceComponent, ViewportComponent](cmd).Map(func(_ EntityId, vi *VisualInstanceComponent, vp *ViewportComponent) bool {
		if vi.Container == GalaxyContainer {
			assert.InDelta(t, 240, vp.Rect.Width, 1e-9)
		}
		return true
	})
}
