package sparks

import (
	"fmt"
)

// ensureSingleRenderer installs renderer as the RendererState resource.
// Installing the same name twice is a no-op; a different name panics.
func ensureSingleRenderer(app *App, name string, renderer ParticleRenderer) *RendererState {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if renderer == nil {
		panic(fmt.Sprintf("renderer %s is nil", name))
	}
	if rs, ok := Resource[RendererState](app); ok {
		if rs.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", rs.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", rs.Name, name))
		}
		return rs
	}
	rs := &RendererState{Name: name, Renderer: renderer}
	app.addResources(rs)
	app.Logger().Infof("Renderer selected: %s", name)
	return rs
}
