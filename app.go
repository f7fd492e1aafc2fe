package blacksky

import (
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
)

type systemFn any

// Module is the unit of installation: it adds resources and systems to an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	ecs       *Ecs

	frame         uint64
	exitRequested atomic.Bool
	closers       []func()

	// Command Buffering
	pendingAdditions []pendingAdd
	pendingRemovals  []EntityId
	pendingCompAdds  []pendingCompAdd
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

// NewApp returns an App with the default stages and no modules.
func NewApp() *App {
	ecs := MakeEcs()
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
		ecs:       &ecs,
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	return app
}

// Frame returns the number of frames stepped so far.
func (app *App) Frame() uint64 {
	return app.frame
}

// RequestExit asks the loop to stop after the current frame. Safe from any goroutine.
func (app *App) RequestExit() {
	app.exitRequested.Store(true)
}

func (app *App) ExitRequested() bool {
	return app.exitRequested.Load()
}

// OnClose registers fn to run when the app closes. Closers run in reverse
// registration order.
func (app *App) OnClose(fn func()) {
	app.closers = append(app.closers, fn)
}

// Close runs the registered closers once.
func (app *App) Close() {
	closers := app.closers
	app.closers = nil
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// Run steps frames until an exit is requested, then closes the app. There is
// no other terminal state.
func (app *App) Run() {
	app.Logger().Infof("Running %d stages", len(app.stages))
	for !app.ExitRequested() {
		app.Step()
	}
	app.Logger().Infof("Stopped after %d frames", app.frame)
	app.Close()
}

// RunFrames steps at most n frames, returning early if an exit is requested.
func (app *App) RunFrames(n int) {
	for i := 0; i < n && !app.ExitRequested(); i++ {
		app.Step()
	}
}

// Step runs every stage once and flushes commands after each one.
func (app *App) Step() {
	app.frame++
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type T registered on app.
func Resource[T any](app *App) (*T, bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	res, ok := app.resources[t]
	if !ok {
		return nil, false
	}
	typed, ok := res.(*T)
	return typed, ok
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.panicUnresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.panicUnresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) panicUnresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 && len(app.pendingCompAdds) == 0 {
		return
	}

	// Removals first so nothing is attached to a dead entity.
	// Removing an entity that is still pending cancels its addition.
	var cancelled set[EntityId]
	for _, eid := range app.pendingRemovals {
		if !app.ecs.hasEntity(eid) {
			if cancelled == nil {
				cancelled = make(set[EntityId])
			}
			cancelled[eid] = struct{}{}
			continue
		}
		app.Logger().Debugf("Removing entity %v", eid)
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		if _, ok := cancelled[add.eid]; ok {
			continue
		}
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		if !app.ecs.hasEntity(add.eid) {
			continue
		}
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]
}
