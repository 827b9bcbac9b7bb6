package sparks

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/sparks/gpu"
	"github.com/gekko3d/sparks/pool"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var errSurfaceUnavailable = errors.New("surface has no drawable area")

// WgpuRenderer draws every emitter's ring into the window surface, one
// instance buffer per emitter.
type WgpuRenderer struct {
	gpuState *GpuState
	window   *WindowState

	pipelines map[bool]*gpu.ParticlePipeline
	buffers   map[uuid.UUID]*gpu.ParticleBuffers
	log       Logger

	// per frame
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	encoder  *wgpu.CommandEncoder
	pass     *wgpu.RenderPassEncoder
	viewProj mgl32.Mat4
	aspect   float32
}

func NewWgpuRenderer(gpuState *GpuState, window *WindowState, log Logger) *WgpuRenderer {
	return &WgpuRenderer{
		gpuState:  gpuState,
		window:    window,
		pipelines: make(map[bool]*gpu.ParticlePipeline),
		buffers:   make(map[uuid.UUID]*gpu.ParticleBuffers),
		log:       log,
	}
}

func (r *WgpuRenderer) pipeline(additive bool) (*gpu.ParticlePipeline, error) {
	if p, ok := r.pipelines[additive]; ok {
		return p, nil
	}
	p, err := gpu.NewParticlePipeline(r.gpuState.device, r.gpuState.surfaceConfig.Format, additive)
	if err != nil {
		return nil, fmt.Errorf("particle pipeline: %w", err)
	}
	r.pipelines[additive] = p
	return p, nil
}

// emitterBuffers returns the device mirror of em's pool, creating it on first
// use. A fresh mirror of a pool that already published particles is restored
// from the pool.
func (r *WgpuRenderer) emitterBuffers(em *ParticleEmitterComponent) (*gpu.ParticleBuffers, error) {
	if b, ok := r.buffers[em.Id]; ok {
		return b, nil
	}
	b, err := gpu.NewParticleBuffers(r.gpuState.device, em.Settings.Capacity)
	if err != nil {
		return nil, fmt.Errorf("emitter %s buffers: %w", em.Name, err)
	}
	r.buffers[em.Id] = b
	if p := em.Pool(); p != nil {
		if n := b.Restore(p); n > 0 {
			r.log.Debugf("restored %d particles for emitter %s", n, em.Name)
		}
	}
	return b, nil
}

func (r *WgpuRenderer) UploadSink(em *ParticleEmitterComponent) pool.UploadSink {
	b, err := r.emitterBuffers(em)
	if err != nil {
		r.log.Errorf("%v", err)
		return nil
	}
	return b
}

func (r *WgpuRenderer) BeginFrame(cam *Camera) error {
	if !r.gpuState.resize(r.window.WindowWidth, r.window.WindowHeight) {
		return errSurfaceUnavailable
	}
	texture, err := r.gpuState.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("GetCurrentTexture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return fmt.Errorf("CreateView: %w", err)
	}
	encoder, err := r.gpuState.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		texture.Release()
		return fmt.Errorf("CreateCommandEncoder: %w", err)
	}

	r.texture, r.view, r.encoder = texture, view, encoder
	r.pass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	r.aspect = r.window.Aspect()
	r.viewProj = cam.ViewProjection(r.aspect)
	return nil
}

func (r *WgpuRenderer) DrawSink(em *ParticleEmitterComponent) pool.DrawSink {
	if r.pass == nil {
		return nil
	}
	b, err := r.emitterBuffers(em)
	if err != nil {
		r.log.Errorf("%v", err)
		return nil
	}
	pipeline, err := r.pipeline(em.Settings.Visual.Additive)
	if err != nil {
		r.log.Errorf("%v", err)
		return nil
	}
	if err := b.Bind(pipeline); err != nil {
		r.log.Errorf("emitter %s bind group: %v", em.Name, err)
		return nil
	}

	params := gpu.NewParams(em.Settings)
	params.ViewProj = r.viewProj
	params.ViewportScale = mgl32.Vec2{0.5 / r.aspect, -0.5}
	params.CurrentTime = float32(em.Pool().SimulationTime())
	b.WriteParams(params)

	return &gpu.PassDrawer{Pass: r.pass, Pipeline: pipeline, Buffers: b}
}

func (r *WgpuRenderer) EndFrame() error {
	if r.pass == nil {
		return nil
	}
	defer r.releaseFrame()

	if err := r.pass.End(); err != nil {
		return fmt.Errorf("render pass End: %w", err)
	}
	cmdBuffer, err := r.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder Finish: %w", err)
	}
	defer cmdBuffer.Release()

	r.gpuState.queue.Submit(cmdBuffer)
	r.gpuState.surface.Present()
	return nil
}

func (r *WgpuRenderer) releaseFrame() {
	if r.pass != nil {
		r.pass.Release()
		r.pass = nil
	}
	if r.encoder != nil {
		r.encoder.Release()
		r.encoder = nil
	}
	if r.view != nil {
		r.view.Release()
		r.view = nil
	}
	if r.texture != nil {
		r.texture.Release()
		r.texture = nil
	}
}

func (r *WgpuRenderer) Forget(id uuid.UUID) {
	if b, ok := r.buffers[id]; ok {
		b.Release()
		delete(r.buffers, id)
	}
}

func (r *WgpuRenderer) Release() {
	r.releaseFrame()
	for id, b := range r.buffers {
		b.Release()
		delete(r.buffers, id)
	}
	for k, p := range r.pipelines {
		p.Release()
		delete(r.pipelines, k)
	}
	r.gpuState.release()
}

// WgpuRendererModule opens the GPU on the shared window and installs a
// WgpuRenderer. It needs PlatformWindowModule installed first.
type WgpuRendererModule struct{}

func (m WgpuRendererModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic(fmt.Sprintf("%s requires %s", reflect.TypeOf(m), reflect.TypeOf(WindowState{})))
	}
	gpuState := createGpuState(ws)
	app.Logger().Infof("GPU ready: %s", gpuState)

	RendererModule{
		Name:     string(RendererWGPU),
		Renderer: NewWgpuRenderer(gpuState, ws, app.Logger()),
	}.Install(app, cmd)
}
