package blacksky

import (
	"time"
)

// SceneOptions are the run-time choices that are not part of the scene file.
type SceneOptions struct {
	Debug bool
	// FixedStep makes animation independent of wall time. The snapshot
	// renderer always uses one.
	FixedStep time.Duration
	// Renderer replaces the renderer module; nil builds the one named in
	// the config. Tests pass a headless stand-in.
	Renderer Module
	// Watch reloads the scene file at this path when it changes.
	Watch string
}

// SceneModules lists the modules of a complete scene, renderer last so it
// can fire RendererReady once everything else is installed.
func SceneModules(cfg *SceneConfig, opts SceneOptions) ([]Module, error) {
	renderer := opts.Renderer
	if renderer == nil {
		name, err := ParseRendererName(cfg.Renderer)
		if err != nil {
			return nil, err
		}
		if renderer, err = RendererModule(name, cfg); err != nil {
			return nil, err
		}
		if name == RendererSnapshot && opts.FixedStep <= 0 {
			opts.FixedStep = time.Second / ReferenceFrameRate
		}
	}

	modules := []Module{
		LoggingModule{Prefix: "blacksky", Debug: opts.Debug},
		TimeModule{FixedStep: opts.FixedStep},
		InputModule{},
		LifecycleModule{},
		AssetServerModule{},
		PageModule{
			Width:      cfg.Window.Width,
			Height:     cfg.Window.Height,
			Containers: cfg.Containers,
		},
		SpinModule{Mode: cfg.RotationMode()},
		VisualsModule{Defs: cfg.Visuals, Seed: cfg.Seed},
		EffectsModule{Config: cfg.Effects, Seed: cfg.Seed},
		FrameModule{Clear: cfg.Clear},
	}
	if opts.Watch != "" {
		modules = append(modules, ConfigWatchModule{Path: opts.Watch})
	}
	return append(modules, renderer), nil
}

// BuildScene installs the scene modules on a new App.
func BuildScene(cfg *SceneConfig, opts SceneOptions) (*App, error) {
	modules, err := SceneModules(cfg, opts)
	if err != nil {
		return nil, err
	}
	return NewAppBuilder().UseModule(modules...).Build(), nil
}
