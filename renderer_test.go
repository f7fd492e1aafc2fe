package blacksky

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendererName(t *testing.T) {
	name, err := ParseRendererName(" Terminal ")
	require.NoError(t, err)
	assert.Equal(t, RendererTerminal, name)

	_, err = ParseRendererName("voxelrt")
	assert.ErrorIs(t, err, ErrUnknownRenderer)
}

func TestEnsureSingleRenderer(t *testing.T) {
	app := NewApp()
	ensureSingleRenderer(app, RendererSnapshot)
	assert.NotPanics(t, func() { ensureSingleRenderer(app, RendererSnapshot) })
	assert.Panics(t, func() { ensureSingleRenderer(app, RendererTerminal) })
}

func TestApplyHostEvents(t *testing.T) {
	app := NewApp()
	input := &Input{}
	page := NewPage(100, 100, DefaultContainers()...)
	page.TakeResized()

	applyHostEvents(app, []hostEvent{
		{kind: hostMove, x: 10, y: 20},
		{kind: hostClick, x: 30, y: 40},
		{kind: hostResize, width: 200, height: 150},
	}, input, page)

	assert.True(t, input.PointerInside)
	assert.Equal(t, 30.0, input.PointerX)
	assert.Equal(t, [][2]float64{{30, 40}}, input.Clicks)
	assert.Equal(t, 200, page.Width)
	assert.True(t, page.TakeResized())
	assert.False(t, app.ExitRequested())

	applyHostEvents(app, []hostEvent{{kind: hostLeave}, {kind: hostResize}, {kind: hostQuit}}, input, page)
	assert.False(t, input.PointerInside)
	assert.Equal(t, 200, page.Width, "zero sizes are ignored")
	assert.True(t, app.ExitRequested())
}

func snapshotScene(t *testing.T, mod SnapshotModule) *App {
	t.Helper()
	cfg := DefaultSceneConfig()
	cfg.Seed = 3
	app, err := BuildScene(cfg, SceneOptions{Renderer: mod, FixedStep: time.Second / 60})
	require.NoError(t, err)
	return app
}

func TestSnapshotModule_WritesPNG(t *testing.T) {
	var buf bytes.Buffer
	app := snapshotScene(t, SnapshotModule{Width: 200, Height: 120, Frames: 3, Writer: &buf, Caption: "BLACK SKY"})

	state, err := RendererState(app)
	assert.Equal(t, ReadyOK, state)
	assert.NoError(t, err)

	app.Run()
	assert.Equal(t, uint64(3), app.Frame())

	snap := mustResource[SnapshotState](t, app)
	require.NoError(t, snap.Err)
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())

	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, bl, _ := img.At(x, y).RGBA(); bl > 0 {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 50, "galaxy points should be visible")
}

func TestSnapshotModule_Scales(t *testing.T) {
	var buf bytes.Buffer
	app := snapshotScene(t, SnapshotModule{Width: 200, Height: 120, Frames: 1, Scale: 0.5, Writer: &buf})
	app.Run()

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestTerminalModule_SimulationScreen(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	cfg := DefaultSceneConfig()
	app, err := BuildScene(cfg, SceneOptions{
		Renderer:  TerminalModule{Screen: sim, FrameRate: 1000},
		FixedStep: time.Second / 60,
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	state, _ := RendererState(app)
	require.Equal(t, ReadyOK, state)

	app.RunFrames(2)
	w, h := sim.Size()
	page := mustResource[Page](t, app)
	assert.Equal(t, w, page.Width)
	assert.Equal(t, h*2, page.Height)
	assert.Equal(t, 4, countInstances(app.Commands()))

	// Something other than a blank cell was drawn.
	drawn := false
	for y := 0; y < h && !drawn; y++ {
		for x := 0; x < w; x++ {
			if r, _, _, _ := sim.GetContent(x, y); r == '▀' {
				drawn = true
				break
			}
		}
	}
	assert.True(t, drawn)

	require.NoError(t, sim.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	require.Eventually(t, func() bool {
		app.Step()
		return app.ExitRequested()
	}, time.Second, 5*time.Millisecond)
}

func TestRendererModule_FromConfig(t *testing.T) {
	cfg := DefaultSceneConfig()
	cfg.Snapshot.Frames = 9

	mod, err := RendererModule(RendererSnapshot, cfg)
	require.NoError(t, err)
	snap, ok := mod.(SnapshotModule)
	require.True(t, ok)
	assert.Equal(t, 9, snap.Frames)

	_, err = RendererModule("voxelrt", cfg)
	assert.ErrorIs(t, err, ErrUnknownRenderer)
}

func TestWriteBanner(t *testing.T) {
	var buf bytes.Buffer
	WriteBanner(&buf)
	assert.Contains(t, buf.String(), "BLACK SKY")
	assert.Contains(t, buf.String(), "An Infinite Possibility that I Am")
}
