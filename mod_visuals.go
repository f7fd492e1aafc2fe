package blacksky

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

// VisualSet owns the spawned visual instances. It builds them once the
// renderer is ready and rebuilds them when the definitions change.
type VisualSet struct {
	defs     []VisualDef
	entities []EntityId
	rng      *rand.Rand

	ready   atomic.Bool
	rebuild atomic.Bool
}

func NewVisualSet(defs []VisualDef, seed int64) *VisualSet {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &VisualSet{
		defs: defs,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (set *VisualSet) Entities() []EntityId {
	return set.entities
}

// SetDefs replaces the definitions. The instances are rebuilt on the next
// frame if the renderer is ready.
func (set *VisualSet) SetDefs(defs []VisualDef) {
	set.defs = defs
	if set.ready.Load() {
		set.rebuild.Store(true)
	}
}

func (set *VisualSet) markReady() {
	set.ready.Store(true)
	set.rebuild.Store(true)
}

// Rebuild destroys every instance and spawns the current definitions. Defs
// whose container is absent are skipped.
func (set *VisualSet) Rebuild(cmd *Commands, assets *AssetServer, page *Page) {
	for _, eid := range set.entities {
		DestroyVisual(cmd, assets, eid)
	}
	set.entities = set.entities[:0]

	for _, def := range set.defs {
		eid, err := SpawnVisual(cmd, assets, page, set.rng, def)
		if errors.Is(err, ErrContainerAbsent) {
			cmd.Logger().Debugf("Skipping %v", err)
			continue
		}
		if err != nil {
			cmd.Logger().Errorf("Failed to spawn visual: %v", err)
			continue
		}
		set.entities = append(set.entities, eid)
	}
	cmd.Logger().Infof("Built %d of %d visuals", len(set.entities), len(set.defs))
}

type VisualsModule struct {
	Defs []VisualDef
	Seed int64
}

func (mod VisualsModule) Install(app *App, cmd *Commands) {
	defs := mod.Defs
	if defs == nil {
		defs = DefaultVisualDefs()
	}
	set := NewVisualSet(defs, mod.Seed)
	cmd.AddResources(set)

	ready := ensureRendererReady(app)
	ready.OnReady(set.markReady)
	ready.OnFail(func(err error) {
		app.Logger().Errorf("Visuals disabled: %v", fmt.Errorf("%w: %w", ErrRendererUnavailable, err))
	})

	app.UseSystem(System(visualsBuildSystem).InStage(PreUpdate))
}

func visualsBuildSystem(set *VisualSet, assets *AssetServer, page *Page, cmd *Commands) {
	if !set.rebuild.Swap(false) {
		return
	}
	set.Rebuild(cmd, assets, page)
}
