package gpu

import "github.com/cogentcore/webgpu/wgpu"

// PassDrawer issues instanced draws for one emitter inside an open render pass.
// It implements pool.DrawSink; instance indices map one-to-one to ring slots.
type PassDrawer struct {
	Pass     *wgpu.RenderPassEncoder
	Pipeline *ParticlePipeline
	Buffers  *ParticleBuffers

	bound bool
	Calls int
}

func (d *PassDrawer) DrawRange(start, count int) {
	if count <= 0 {
		return
	}
	if !d.bound {
		d.Pass.SetPipeline(d.Pipeline.Pipeline)
		d.Pass.SetBindGroup(0, d.Buffers.BindGroup, nil)
		d.Pass.SetVertexBuffer(0, d.Buffers.InstanceBuf, 0, d.Buffers.InstanceBuf.GetSize())
		d.bound = true
	}
	d.Pass.Draw(VerticesPerParticle, uint32(count), 0, uint32(start))
	d.Calls++
}
