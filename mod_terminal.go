package blacksky

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/blacksky-gfx/blacksky/render/raster"
	"github.com/blacksky-gfx/blacksky/render/term"
	"github.com/gdamore/tcell/v2"
)

type TerminalState struct {
	screen   *term.Screen
	canvas   *raster.Canvas
	interval time.Duration
	last     time.Time
	primed   bool
}

// TerminalModule draws the scene in the terminal with half-block cells.
type TerminalModule struct {
	FrameRate int
	// LogFile receives log output while the screen is active. Empty discards it.
	LogFile string
	// Screen overrides the controlling terminal, for tests.
	Screen tcell.Screen
}

func (mod TerminalModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererTerminal)
	ready := ensureRendererReady(app)

	var (
		screen *term.Screen
		err    error
	)
	if mod.Screen != nil {
		screen, err = term.NewWithScreen(mod.Screen)
	} else {
		screen, err = term.Open()
	}
	if err != nil {
		failRenderer(app, ready, fmt.Errorf("open terminal: %w", err))
		return
	}

	restore := mod.redirectLogs(app)
	rate := mod.FrameRate
	if rate <= 0 {
		rate = 30
	}
	w, h := screen.PixelSize()
	ts := &TerminalState{
		screen:   screen,
		canvas:   raster.New(w, h),
		interval: time.Second / time.Duration(rate),
	}
	cmd.AddResources(ts)
	app.OnClose(func() {
		screen.Close()
		restore()
	})
	app.UseSystem(System(terminalEventsSystem).InStage(Prelude))
	app.UseSystem(System(terminalRenderSystem).InStage(Render))

	ready.Fire()
}

// redirectLogs keeps log lines off the screen. The returned func restores
// the default destinations.
func (mod TerminalModule) redirectLogs(app *App) func() {
	logger, ok := app.Logger().(*DefaultLogger)
	if !ok {
		return func() {}
	}
	var out io.Writer = io.Discard
	var file *os.File
	if mod.LogFile != "" {
		f, err := os.OpenFile(mod.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Warnf("Discarding logs, cannot open %s: %v", mod.LogFile, err)
		} else {
			out, file = f, f
		}
	}
	logger.Redirect(out, out)
	return func() {
		logger.Redirect(os.Stdout, os.Stderr)
		if file != nil {
			file.Close()
		}
	}
}

func terminalEvents(events []term.Event) []hostEvent {
	out := make([]hostEvent, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case term.EventMove:
			out = append(out, hostEvent{kind: hostMove, x: ev.X, y: ev.Y})
		case term.EventClick:
			out = append(out, hostEvent{kind: hostClick, x: ev.X, y: ev.Y})
		case term.EventResize:
			out = append(out, hostEvent{kind: hostResize, width: ev.Width, height: ev.Height})
		case term.EventQuit:
			out = append(out, hostEvent{kind: hostQuit})
		}
	}
	return out
}

func terminalEventsSystem(ts *TerminalState, input *Input, page *Page, cmd *Commands) {
	events := terminalEvents(ts.screen.Events())
	if !ts.primed {
		// The page starts at its configured size; match the terminal once.
		w, h := ts.screen.PixelSize()
		events = append([]hostEvent{{kind: hostResize, width: w, height: h}}, events...)
		ts.primed = true
	}
	applyHostEvents(cmd.App(), events, input, page)
}

func terminalRenderSystem(ts *TerminalState, assets *AssetServer, out *FrameOutput, redraw *Redraw) {
	assets.TakeReleased()

	if redraw.Take() {
		ts.canvas.Resize(out.Frame.Width, out.Frame.Height)
		ts.canvas.DrawFrame(&out.Frame)
		ts.screen.Draw(ts.canvas.Image())
	}

	if wait := ts.interval - time.Since(ts.last); wait > 0 && !ts.last.IsZero() {
		time.Sleep(wait)
	}
	ts.last = time.Now()
}
