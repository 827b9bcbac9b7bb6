package sparks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.Equal(t, []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render", "PostRender", "Finale"}, app.Stages())
	assert.Contains(t, app.systems, Shutdown.Name)
	assert.Zero(t, app.MaxFrames)
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseModule(&MockModule{})

	assert.Len(t, builder.modules, 1)
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	app := NewAppBuilder().UseModule(module1).UseModule(module2).Build()

	assert.True(t, module1.installed)
	assert.True(t, module2.installed)
	assert.Len(t, app.modules, 2)
}

func TestAppBuilder_BuildFlushesInstallCommands(t *testing.T) {
	app := NewAppBuilder().UseModule(installFunc(func(app *App, cmd *Commands) {
		cmd.AddEmitter(NewTransform(origin), testEmitter("a"))
	})).Build()

	assert.Equal(t, 1, app.emitters.Len())
}

func TestApp_UseModulesAfterBuild(t *testing.T) {
	app := NewAppBuilder().Build()
	module := &MockModule{}
	app.UseModules(module)

	assert.True(t, module.installed)
}
