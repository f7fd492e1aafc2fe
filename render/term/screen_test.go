package term

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T, w, h int) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	scr, err := NewWithScreen(sim)
	require.NoError(t, err)
	sim.SetSize(w, h)
	t.Cleanup(scr.Close)
	return scr, sim
}

func TestScreen_PixelSize(t *testing.T) {
	scr, _ := newSim(t, 20, 6)
	w, h := scr.PixelSize()
	assert.Equal(t, 20, w)
	assert.Equal(t, 12, h)
}

func TestScreen_DrawHalfBlocks(t *testing.T) {
	scr, sim := newSim(t, 4, 2)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(1, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 1, color.RGBA{0, 0, 255, 255})
	scr.Draw(img)

	r, _, style, _ := sim.GetContent(1, 0)
	assert.Equal(t, '▀', r)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)

	_, _, style, _ = sim.GetContent(0, 1)
	fg, _, _ = style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), fg)
}

// collect gathers n non-resize events.
func collect(t *testing.T, scr *Screen, n int) []Event {
	t.Helper()
	var got []Event
	require.Eventually(t, func() bool {
		for _, ev := range scr.Events() {
			if ev.Kind != EventResize {
				got = append(got, ev)
			}
		}
		return len(got) >= n
	}, time.Second, 5*time.Millisecond)
	return got
}

func TestScreen_MouseEvents(t *testing.T) {
	scr, sim := newSim(t, 10, 5)

	require.NoError(t, sim.PostEvent(tcell.NewEventMouse(3, 2, tcell.ButtonNone, tcell.ModNone)))
	require.NoError(t, sim.PostEvent(tcell.NewEventMouse(3, 2, tcell.Button1, tcell.ModNone)))
	require.NoError(t, sim.PostEvent(tcell.NewEventMouse(4, 2, tcell.Button1, tcell.ModNone)))

	got := collect(t, scr, 3)
	assert.Equal(t, Event{Kind: EventMove, X: 3.5, Y: 5}, got[0])
	assert.Equal(t, EventClick, got[1].Kind)
	// Dragging with the button held is a move, not another click.
	assert.Equal(t, EventMove, got[2].Kind)
}

func TestScreen_QuitKeys(t *testing.T) {
	scr, sim := newSim(t, 10, 5)

	require.NoError(t, sim.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	require.NoError(t, sim.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))

	got := collect(t, scr, 1)
	assert.Equal(t, EventQuit, got[0].Kind)
}
