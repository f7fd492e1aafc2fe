package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/blacksky-gfx/blacksky"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "blacksky: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Scene file (.toml, .yaml or .yml)")
	renderer := flag.String("renderer", "", "Renderer: wgpu, terminal or snapshot")
	seed := flag.Int64("seed", 0, "Random seed for point fields and effects (0 = time based)")
	frames := flag.Int("frames", 0, "Snapshot: frames to run before writing")
	out := flag.String("out", "", "Snapshot: output PNG path")
	scale := flag.Float64("scale", 0, "Snapshot: output scale factor")
	watch := flag.Bool("watch", false, "Reload the scene file when it changes")
	timeScaled := flag.Bool("time-scaled", false, "Scale rotation by frame time instead of one step per frame")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := blacksky.DefaultSceneConfig()
	if *configPath != "" {
		loaded, err := blacksky.LoadSceneConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags set on the command line win over the scene file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "renderer":
			cfg.Renderer = *renderer
		case "seed":
			cfg.Seed = *seed
		case "frames":
			cfg.Snapshot.Frames = *frames
		case "out":
			cfg.Snapshot.Out = *out
		case "scale":
			cfg.Snapshot.Scale = *scale
		case "time-scaled":
			if *timeScaled {
				cfg.Rotation = blacksky.TimeScaled.String()
			} else {
				cfg.Rotation = blacksky.FrameCoupled.String()
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *watch && *configPath == "" {
		return fmt.Errorf("-watch needs -config")
	}

	if cfg.Renderer != string(blacksky.RendererTerminal) {
		blacksky.WriteBanner(os.Stdout)
	}

	opts := blacksky.SceneOptions{Debug: *debug}
	if *watch {
		opts.Watch = *configPath
	}
	app, err := blacksky.BuildScene(cfg, opts)
	if err != nil {
		return err
	}
	if state, err := blacksky.RendererState(app); state == blacksky.ReadyFailed {
		app.Close()
		return fmt.Errorf("%w: %w", blacksky.ErrRendererUnavailable, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		app.RequestExit()
	}()

	app.Run()

	if snap, ok := blacksky.Resource[blacksky.SnapshotState](app); ok && snap.Err != nil {
		return snap.Err
	}
	return nil
}
