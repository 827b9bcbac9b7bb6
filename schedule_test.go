package sparks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseStage_InsertsRelativeToTarget(t *testing.T) {
	app := NewAppBuilder().Build()
	physics := Stage{Name: "Physics"}
	debug := Stage{Name: "Debug"}

	app.UseStage(physics, AfterStage(Update))
	app.UseStage(debug, BeforeStage(Prelude))

	stages := app.Stages()
	assert.Equal(t, "Debug", stages[0])
	assert.Equal(t, "Prelude", stages[1])
	assert.Equal(t, []string{"Update", "Physics", "PostUpdate"}, stages[3:6])
}

func TestUseStage_Panics(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.PanicsWithValue(t, "Stage Missing not found", func() {
		app.UseStage(Stage{Name: "X"}, AfterStage(Stage{Name: "Missing"}))
	})
	assert.PanicsWithValue(t, "Stage Render already exists", func() {
		app.UseStage(Render, AfterStage(Update))
	})
}

func TestUseSystem_UnknownStagePanics(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.PanicsWithValue(t, "Stage Nowhere doesn't exist", func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Nowhere"}))
	})
}

func TestSystems_RunInStageOrder(t *testing.T) {
	var order []string
	record := func(name string) func() {
		return func() { order = append(order, name) }
	}

	app := NewAppBuilder().Build()
	app.UseStage(Stage{Name: "Custom"}, BeforeStage(Render))
	app.UseSystem(System(record("render")).InStage(Render))
	app.UseSystem(System(record("custom")).InStage(Stage{Name: "Custom"}))
	app.UseSystem(System(record("update")))
	app.UseSystem(System(record("update2")).InStage(Update))
	app.UseSystem(System(record("prelude")).InStage(Prelude))
	app.UseSystem(System(record("shutdown")).InStage(Shutdown))

	app.Step()
	assert.Equal(t, []string{"prelude", "update", "update2", "custom", "render"}, order)
}

func TestCommands_FlushAfterEachStage(t *testing.T) {
	var seen []int
	app := NewAppBuilder().UseModule(installFunc(func(app *App, cmd *Commands) {
		app.UseSystem(System(func(cmd *Commands) {
			if cmd.Frame() == 0 {
				cmd.AddEmitter(NewTransform(origin), testEmitter("late"))
			}
		}).InStage(PreUpdate))
		app.UseSystem(System(func(e *Emitters) {
			seen = append(seen, e.Len())
		}).InStage(Update))
	})).Build()

	app.Step()
	app.Step()
	assert.Equal(t, []int{1, 1}, seen)
}
