package sparks

import (
	"reflect"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// PlatformWindowModule ensures a single shared GLFW window (WindowState) is created
// and made available as a resource for the renderer.
// Install is idempotent: if a WindowState resource already exists, it is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewPlatformWindow creates a module that provides a shared WindowState resource.
// If Width/Height are zero, sensible defaults are used.
func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Sparks"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

// Install provides the WindowState resource if missing and polls it every frame.
func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if app.hasResource(t) {
		return
	}

	ws := createWindowState(m.Width, m.Height, m.Title)
	app.addResources(ws)
	app.Logger().Infof("Created window (%dx%d) '%s'", ws.WindowWidth, ws.WindowHeight, m.Title)

	app.UseSystem(System(windowEventsSystem).InStage(Prelude))
	app.UseSystem(System(destroyWindowSystem).InStage(Shutdown))
}

func windowEventsSystem(ws *WindowState, cmd *Commands) {
	glfw.PollEvents()
	ws.WindowWidth, ws.WindowHeight = ws.windowGlfw.GetFramebufferSize()
	if ws.windowGlfw.ShouldClose() {
		cmd.Logger().Infof("window closed")
		cmd.Exit()
	}
}

func destroyWindowSystem(ws *WindowState) {
	ws.destroy()
}
