package blacksky

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var ErrUnknownRenderer = errors.New("unknown renderer")

// RendererName identifies a concrete renderer module.
// Keep names aligned with ensureSingleRenderer tags.
type RendererName string

const (
	RendererWGPU     RendererName = "wgpu"
	RendererTerminal RendererName = "terminal"
	RendererSnapshot RendererName = "snapshot"
)

// RendererNames lists the selectable renderers.
var RendererNames = []RendererName{RendererWGPU, RendererTerminal, RendererSnapshot}

func ParseRendererName(s string) (RendererName, error) {
	name := RendererName(strings.ToLower(strings.TrimSpace(s)))
	for _, n := range RendererNames {
		if n == name {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRenderer, s)
}

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RendererTag struct {
	Name RendererName
}

// ensureSingleRenderer enforces a single renderer invariant.
// If a different renderer is already installed, it panics with a clear message.
func ensureSingleRenderer(app *App, name RendererName) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	t := reflect.TypeOf((*RendererTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if tag, ok2 := res.(*RendererTag); ok2 {
			if tag.Name != name {
				app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
				panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
			}
			return
		}
		panic("RendererTag resource present with unexpected type")
	}
	app.addResources(&RendererTag{Name: name})
}

// UseRenderer installs exactly one renderer module.
// Usage:
//
//	app.UseRenderer(RendererTerminal, TerminalModule{})
func (app *App) UseRenderer(name RendererName, mod Module) *App {
	ensureSingleRenderer(app, name)
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}

// RendererModule returns the module for name configured from cfg.
func RendererModule(name RendererName, cfg *SceneConfig) (Module, error) {
	switch name {
	case RendererWGPU:
		return WgpuModule{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Title:  cfg.Window.Title,
		}, nil
	case RendererTerminal:
		return TerminalModule{
			FrameRate: cfg.Terminal.FrameRate,
			LogFile:   cfg.Terminal.LogFile,
		}, nil
	case RendererSnapshot:
		return SnapshotModule{
			Width:   cfg.Window.Width,
			Height:  cfg.Window.Height,
			Frames:  cfg.Snapshot.Frames,
			Out:     cfg.Snapshot.Out,
			Scale:   cfg.Snapshot.Scale,
			Caption: cfg.Snapshot.Caption,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
}
