package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/sparks/pool"
)

// ParticleBuffers mirrors one pool on the device: an instance buffer with one
// slot per ring slot, and the params uniform for that emitter.
// It implements pool.UploadSink.
type ParticleBuffers struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	InstanceBuf *wgpu.Buffer
	ParamsBuf   *wgpu.Buffer
	BindGroup   *wgpu.BindGroup

	Capacity int

	scratch []byte
}

func NewParticleBuffers(device *wgpu.Device, capacity int) (*ParticleBuffers, error) {
	b := &ParticleBuffers{
		Device:   device,
		Queue:    device.GetQueue(),
		Capacity: capacity,
		scratch:  make([]byte, 0, 256*Stride),
	}
	if _, err := b.ensureBuffer("ParticleInstanceBuf", &b.InstanceBuf, uint64(capacity*Stride), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if _, err := b.ensureBuffer("ParticleParamsBuf", &b.ParamsBuf, ParamsSize, wgpu.BufferUsageUniform); err != nil {
		b.InstanceBuf.Release()
		return nil, err
	}
	return b, nil
}

// ensureBuffer (re)creates buf when it is missing or smaller than size and
// reports whether a new buffer was created, in which case bind groups that
// reference it are stale.
func (b *ParticleBuffers) ensureBuffer(name string, buf **wgpu.Buffer, size uint64, usage wgpu.BufferUsage) (bool, error) {
	if size%4 != 0 {
		size += 4 - (size % 4)
	}
	current := *buf
	if current != nil && current.GetSize() >= size {
		return false, nil
	}
	if current != nil {
		current.Release()
	}
	newBuf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            name,
		Size:             size,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", name, err)
	}
	*buf = newBuf
	return true, nil
}

// UploadRange copies particles into instance slots [start, start+len).
func (b *ParticleBuffers) UploadRange(start int, particles []pool.Particle) {
	if len(particles) == 0 {
		return
	}
	b.scratch = EncodeParticles(b.scratch[:0], particles)
	b.Queue.WriteBuffer(b.InstanceBuf, uint64(start*Stride), b.scratch)
}

// Restore re-uploads everything the pool has published. The queue is the only
// writer, so this is needed only after the device dropped buffer contents.
func (b *ParticleBuffers) Restore(p *pool.Pool) int {
	return p.Reupload(b)
}

func (b *ParticleBuffers) WriteParams(params Params) {
	b.Queue.WriteBuffer(b.ParamsBuf, 0, EncodeParams(params))
}

// Bind creates the params bind group for pipeline if it does not exist yet.
func (b *ParticleBuffers) Bind(pipeline *ParticlePipeline) error {
	if b.BindGroup != nil {
		return nil
	}
	bg, err := pipeline.CreateBindGroup(b.ParamsBuf)
	if err != nil {
		return err
	}
	b.BindGroup = bg
	return nil
}

func (b *ParticleBuffers) Release() {
	if b.BindGroup != nil {
		b.BindGroup.Release()
		b.BindGroup = nil
	}
	if b.InstanceBuf != nil {
		b.InstanceBuf.Release()
		b.InstanceBuf = nil
	}
	if b.ParamsBuf != nil {
		b.ParamsBuf.Release()
		b.ParamsBuf = nil
	}
}
