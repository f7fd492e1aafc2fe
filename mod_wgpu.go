package blacksky

import (
	"fmt"
	"runtime"

	"github.com/blacksky-gfx/blacksky/render/gpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	// glfw
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	framebufferWidth  int
	framebufferHeight int
	events            []hostEvent
}

type GpuState struct {
	renderer *gpu.Renderer
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // WebGPU owns the surface, no GL context
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}

	ws := &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
	ws.framebufferWidth, ws.framebufferHeight = win.GetFramebufferSize()
	ws.events = append(ws.events, hostEvent{kind: hostResize, width: windowWidth, height: windowHeight})
	ws.installCallbacks()
	return ws, nil
}

// installCallbacks queues GLFW input. Callbacks run inside PollEvents on the
// loop thread, so the queue needs no lock.
func (ws *WindowState) installCallbacks() {
	win := ws.windowGlfw
	win.SetSizeCallback(func(w *glfw.Window, width, height int) {
		ws.WindowWidth, ws.WindowHeight = width, height
		ws.events = append(ws.events, hostEvent{kind: hostResize, width: width, height: height})
	})
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		ws.framebufferWidth, ws.framebufferHeight = width, height
	})
	win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		ws.events = append(ws.events, hostEvent{kind: hostMove, x: x, y: y})
	})
	win.SetCursorEnterCallback(func(w *glfw.Window, entered bool) {
		if !entered {
			ws.events = append(ws.events, hostEvent{kind: hostLeave})
		}
	})
	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft && action == glfw.Press {
			x, y := w.GetCursorPos()
			ws.events = append(ws.events, hostEvent{kind: hostClick, x: x, y: y})
		}
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
}

func (ws *WindowState) takeEvents() []hostEvent {
	events := ws.events
	ws.events = nil
	return events
}

func (ws *WindowState) close() {
	ws.windowGlfw.Destroy()
	glfw.Terminate()
}

// WgpuModule opens a GLFW window and draws with WebGPU.
type WgpuModule struct {
	Width  int
	Height int
	Title  string
}

func (mod WgpuModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererWGPU)
	ready := ensureRendererReady(app)

	width, height, title := mod.Width, mod.Height, mod.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Black Sky"
	}

	ws, err := createWindowState(width, height, title)
	if err != nil {
		failRenderer(app, ready, fmt.Errorf("create window: %w", err))
		return
	}
	renderer, err := gpu.New(wgpuglfw.GetSurfaceDescriptor(ws.windowGlfw), ws.framebufferWidth, ws.framebufferHeight)
	if err != nil {
		ws.close()
		failRenderer(app, ready, err)
		return
	}
	app.Logger().Infof("Created window (%dx%d) '%s'", width, height, title)

	cmd.AddResources(ws, &GpuState{renderer: renderer})
	app.OnClose(func() {
		renderer.Close()
		ws.close()
	})
	app.UseSystem(System(windowEventsSystem).InStage(Prelude))
	app.UseSystem(System(wgpuRenderSystem).InStage(Render))

	ready.Fire()
}

// failRenderer marks the renderer unavailable. Consumers of RendererReady
// create nothing; the failure is logged once here.
func failRenderer(app *App, ready *RendererReady, err error) {
	app.Logger().Errorf("Renderer unavailable: %v", err)
	ready.Fail(err)
}

func windowEventsSystem(ws *WindowState, input *Input, page *Page, cmd *Commands) {
	glfw.PollEvents()
	applyHostEvents(cmd.App(), ws.takeEvents(), input, page)
	if ws.windowGlfw.ShouldClose() {
		cmd.App().RequestExit()
	}
}

func wgpuRenderSystem(gs *GpuState, ws *WindowState, assets *AssetServer, out *FrameOutput, redraw *Redraw, cmd *Commands) {
	if released := assets.TakeReleased(); len(released) > 0 {
		keys := make([]string, len(released))
		for i, id := range released {
			keys[i] = string(id)
		}
		gs.renderer.Release(keys...)
	}

	// The surface is presented every frame so FIFO presentation paces the loop.
	redraw.Take()
	if ws.framebufferWidth <= 0 || ws.framebufferHeight <= 0 {
		// Minimised: nothing to present, wait for events instead of spinning.
		glfw.WaitEventsTimeout(0.05)
		return
	}
	gs.renderer.Resize(ws.framebufferWidth, ws.framebufferHeight)
	if err := gs.renderer.Draw(&out.Frame); err != nil {
		cmd.Logger().Warnf("Frame %d not drawn: %v", out.Frame.Number, err)
	}
}
