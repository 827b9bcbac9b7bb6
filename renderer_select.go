package sparks

// RendererName identifies a concrete renderer.
// Keep names aligned with ensureSingleRenderer tags.
type RendererName string

const (
	RendererWGPU     RendererName = "wgpu"
	RendererHeadless RendererName = "headless"
)

// UseWGPU installs the shared window and the wgpu particle renderer.
func (app *App) UseWGPU(width, height int, title string) *App {
	return app.UseModules(NewPlatformWindow(width, height, title), WgpuRendererModule{})
}

// UseHeadless installs a HeadlessRenderer and returns it for inspection.
func (app *App) UseHeadless() *HeadlessRenderer {
	r := NewHeadlessRenderer()
	app.UseModules(RendererModule{Name: string(RendererHeadless), Renderer: r})
	return r
}
