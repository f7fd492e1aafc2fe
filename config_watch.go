package blacksky

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatch reloads the scene file when it changes on disk. Parsing runs on
// the watcher goroutine; the result is applied on the loop thread.
type ConfigWatch struct {
	Path string

	watcher *fsnotify.Watcher
	updates chan *SceneConfig
	done    chan struct{}
}

// NewConfigWatch watches the directory holding path, so editors that save
// by renaming a temp file are still seen.
func NewConfigWatch(path string, logger Logger) (*ConfigWatch, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	cw := &ConfigWatch{
		Path:    abs,
		watcher: watcher,
		updates: make(chan *SceneConfig, 1),
		done:    make(chan struct{}),
	}
	go cw.run(logger)
	return cw, nil
}

func (cw *ConfigWatch) run(logger Logger) {
	watch := cw.watcher
	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-watch.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.Path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := LoadSceneConfig(cw.Path)
			if err != nil {
				// Half-written saves fail here; the next event retries.
				logger.Warnf("Config reload skipped: %v", err)
				continue
			}
			cw.publish(cfg)
		case err, ok := <-watch.Errors:
			if !ok {
				return
			}
			logger.Warnf("Config watcher: %v", err)
		}
	}
}

// publish keeps only the newest config.
func (cw *ConfigWatch) publish(cfg *SceneConfig) {
	for {
		select {
		case cw.updates <- cfg:
			return
		default:
		}
		select {
		case <-cw.updates:
		default:
		}
	}
}

// Latest returns the newest reloaded config, if one arrived since the last call.
func (cw *ConfigWatch) Latest() (*SceneConfig, bool) {
	select {
	case cfg := <-cw.updates:
		return cfg, true
	default:
		return nil, false
	}
}

func (cw *ConfigWatch) Close() {
	close(cw.done)
	cw.watcher.Close()
}

type ConfigWatchModule struct {
	Path string
}

func (mod ConfigWatchModule) Install(app *App, cmd *Commands) {
	cw, err := NewConfigWatch(mod.Path, app.Logger())
	if err != nil {
		app.Logger().Errorf("Config hot reload disabled: %v", err)
		return
	}
	app.Logger().Infof("Watching %s", cw.Path)
	cmd.AddResources(cw)
	app.OnClose(cw.Close)
	app.UseSystem(System(configReloadSystem).InStage(PreUpdate))
}

// configReloadSystem applies a reloaded scene. Window size, renderer and
// seed only take effect on restart.
func configReloadSystem(cw *ConfigWatch, page *Page, set *VisualSet, fx *Effects, animator *SpinAnimator, out *FrameOutput, cmd *Commands) {
	cfg, ok := cw.Latest()
	if !ok {
		return
	}
	page.SetContainers(cfg.Containers)
	set.SetDefs(cfg.Visuals)
	fx.Reconfigure(cfg.Effects)
	animator.Mode = cfg.RotationMode()
	out.Clear = cfg.Clear
	cmd.Logger().Infof("Reloaded %s", cw.Path)
}
