package sparks

import (
	"github.com/gekko3d/sparks/pool"
	"github.com/google/uuid"
)

// ParticleRenderer consumes pools through their sinks. A frame is
// BeginFrame, one DrawSink per emitter, EndFrame. Uploads happen outside the
// frame bracket, in PreRender.
type ParticleRenderer interface {
	UploadSink(em *ParticleEmitterComponent) pool.UploadSink
	BeginFrame(cam *Camera) error
	DrawSink(em *ParticleEmitterComponent) pool.DrawSink
	EndFrame() error
	// Forget drops per-emitter resources after the emitter was removed.
	Forget(id uuid.UUID)
	Release()
}

// RendererState is the resource systems use to reach the installed renderer.
type RendererState struct {
	Name     string
	Renderer ParticleRenderer
}

// RendererModule installs an already constructed renderer.
type RendererModule struct {
	Name     string
	Renderer ParticleRenderer
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, m.Name, m.Renderer)
	app.UseSystem(System(releaseRendererSystem).InStage(Shutdown))
}

func releaseRendererSystem(rs *RendererState) {
	rs.Renderer.Release()
}

// HeadlessRenderer keeps a CPU copy of everything uploaded and counts draws.
// It stands in for the GPU in tests and in headless runs.
type HeadlessRenderer struct {
	mirrors map[uuid.UUID][]pool.Particle

	Frames    int
	Uploaded  int
	DrawCalls int
	// Drawn is the number of particles drawn in the last frame.
	Drawn int
	// InFrame is true between BeginFrame and EndFrame.
	InFrame bool
}

func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{mirrors: make(map[uuid.UUID][]pool.Particle)}
}

func (r *HeadlessRenderer) UploadSink(em *ParticleEmitterComponent) pool.UploadSink {
	mirror, ok := r.mirrors[em.Id]
	if !ok {
		mirror = make([]pool.Particle, em.Settings.Capacity)
		r.mirrors[em.Id] = mirror
	}
	return pool.UploadFunc(func(start int, particles []pool.Particle) {
		copy(mirror[start:], particles)
		r.Uploaded += len(particles)
	})
}

func (r *HeadlessRenderer) BeginFrame(cam *Camera) error {
	r.InFrame = true
	r.Drawn = 0
	return nil
}

func (r *HeadlessRenderer) DrawSink(em *ParticleEmitterComponent) pool.DrawSink {
	return pool.DrawFunc(func(start, count int) {
		r.DrawCalls++
		r.Drawn += count
	})
}

func (r *HeadlessRenderer) EndFrame() error {
	r.InFrame = false
	r.Frames++
	return nil
}

func (r *HeadlessRenderer) Forget(id uuid.UUID) {
	delete(r.mirrors, id)
}

func (r *HeadlessRenderer) Release() {
	clear(r.mirrors)
}

// Mirror returns the uploaded copy of an emitter's ring, indexed by slot.
func (r *HeadlessRenderer) Mirror(id uuid.UUID) []pool.Particle {
	return r.mirrors[id]
}
