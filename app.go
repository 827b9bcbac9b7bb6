package sparks

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/google/uuid"
)

type Module interface {
	Install(app *App, cmd *Commands)
}

type systemFn any

type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	emitters  *Emitters

	// MaxFrames stops Run after that many frames. Zero runs until Exit.
	MaxFrames uint64
	frames    uint64
	exiting   bool

	// Command Buffering
	pendingEmitters []pendingEmitter
	pendingRemovals []uuid.UUID
}

type pendingEmitter struct {
	transform TransformComponent
	emitter   ParticleEmitterComponent
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run steps frames until a system requests exit or MaxFrames is reached, then
// runs the Shutdown stage once, last registered system first.
func (app *App) Run() {
	app.Logger().Infof("Running %d stages...", len(app.stages))

	for app.Step() {
	}

	app.Logger().Infof("Stopping after %d frames", app.frames)
	app.shutdown()
}

func (app *App) shutdown() {
	systems := app.systems[Shutdown.Name]
	for i := len(systems) - 1; i >= 0; i-- {
		app.callSystem(systems[i])
	}
	app.FlushCommands()
}

// Step runs every stage once and reports whether another frame should follow.
func (app *App) Step() bool {
	for _, stage := range app.stages {
		app.callStage(stage)
	}
	app.frames++

	if app.MaxFrames > 0 && app.frames >= app.MaxFrames {
		return false
	}
	return !app.exiting
}

func (app *App) Frames() uint64 { return app.frames }

func (app *App) callStage(stage Stage) {
	for _, system := range app.systems[stage.Name] {
		app.callSystem(system)
	}
	app.FlushCommands()
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) hasResource(resourceType reflect.Type) bool {
	_, ok := app.resources[resourceType]
	return ok
}

// Resource looks up a resource by its struct type.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
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
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
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
	if len(app.pendingEmitters) == 0 && len(app.pendingRemovals) == 0 {
		return
	}

	for _, id := range app.pendingRemovals {
		if !app.emitters.Remove(id) {
			if !app.cancelPendingEmitter(id) {
				app.Logger().Warnf("remove emitter %s: not found", id)
			}
			continue
		}
		if rs, ok := Resource[RendererState](app); ok && rs.Renderer != nil {
			rs.Renderer.Forget(id)
		}
		app.Logger().Debugf("removed emitter %s", id)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingEmitters {
		app.emitters.Spawn(add.transform, add.emitter)
		app.Logger().Debugf("added emitter %s (%s)", add.emitter.Id, add.emitter.Name)
	}
	app.pendingEmitters = app.pendingEmitters[:0]
}

// cancelPendingEmitter drops an emitter that was queued and removed within
// the same stage.
func (app *App) cancelPendingEmitter(id uuid.UUID) bool {
	for i, add := range app.pendingEmitters {
		if add.emitter.Id == id {
			app.pendingEmitters = append(app.pendingEmitters[:i], app.pendingEmitters[i+1:]...)
			return true
		}
	}
	return false
}
