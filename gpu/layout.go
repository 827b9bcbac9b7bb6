package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gekko3d/sparks/pool"
	"github.com/go-gl/mathgl/mgl32"
)

// Stride is the size of one particle instance in the instance buffer.
//
//	struct ParticleInstance {
//	  position   : vec3<f32>,  // 0
//	  spawn_time : f32,        // 12
//	  velocity   : vec3<f32>,  // 16
//	  random     : unorm8x4,   // 28
//	}
const Stride = 32

// VerticesPerParticle is the number of vertices drawn per instance: one quad as
// two triangles, corners looked up from the vertex index in the shader.
const VerticesPerParticle = 6

// QuadCorners are the billboard corners of a particle in clip-aligned units.
var QuadCorners = [4][2]int16{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// QuadIndices triangulates QuadCorners.
var QuadIndices = [VerticesPerParticle]uint16{0, 1, 2, 0, 2, 3}

// EncodeParticles appends the instance representation of ps to dst.
func EncodeParticles(dst []byte, ps []pool.Particle) []byte {
	for i := range ps {
		p := &ps[i]
		dst = appendVec3(dst, p.Position)
		dst = appendF32(dst, float32(p.SpawnTime))
		dst = appendVec3(dst, p.Velocity)
		dst = append(dst, p.Random[0], p.Random[1], p.Random[2], p.Random[3])
	}
	return dst
}

// ParamsSize is the size of the params uniform block.
//
//	struct Params {
//	  view_proj           : mat4x4<f32>, // 0
//	  viewport_scale      : vec2<f32>,   // 64
//	  current_time        : f32,         // 72
//	  duration            : f32,         // 76
//	  rotate_speed        : vec2<f32>,   // 80
//	  duration_randomness : f32,         // 88
//	  end_velocity        : f32,         // 92
//	  gravity             : vec3<f32>,   // 96
//	  _pad0               : f32,         // 108
//	  min_color           : vec4<f32>,   // 112
//	  max_color           : vec4<f32>,   // 128
//	  start_size          : vec2<f32>,   // 144
//	  end_size            : vec2<f32>,   // 152
//	}
const ParamsSize = 160

// Params is the per-emitter, per-frame shader state.
type Params struct {
	ViewProj      mgl32.Mat4
	ViewportScale mgl32.Vec2
	CurrentTime   float32
	Duration      float32
	Visual        pool.VisualSettings
}

// NewParams fills the static part of Params from pool settings.
func NewParams(s pool.Settings) Params {
	return Params{
		ViewProj:      mgl32.Ident4(),
		ViewportScale: mgl32.Vec2{0.5, -0.5},
		Duration:      s.Duration,
		Visual:        s.Visual,
	}
}

func EncodeParams(p Params) []byte {
	v := &p.Visual
	buf := make([]byte, 0, ParamsSize)
	for _, f := range p.ViewProj {
		buf = appendF32(buf, f)
	}
	buf = appendF32(buf, p.ViewportScale[0])
	buf = appendF32(buf, p.ViewportScale[1])
	buf = appendF32(buf, p.CurrentTime)
	buf = appendF32(buf, p.Duration)
	buf = appendF32(buf, v.MinRotateSpeed)
	buf = appendF32(buf, v.MaxRotateSpeed)
	buf = appendF32(buf, v.DurationRandomness)
	buf = appendF32(buf, v.EndVelocity)
	buf = appendVec3(buf, v.Gravity)
	buf = appendF32(buf, 0)
	for _, f := range v.MinColor {
		buf = appendF32(buf, f)
	}
	for _, f := range v.MaxColor {
		buf = appendF32(buf, f)
	}
	buf = appendF32(buf, v.MinStartSize)
	buf = appendF32(buf, v.MaxStartSize)
	buf = appendF32(buf, v.MinEndSize)
	buf = appendF32(buf, v.MaxEndSize)
	return buf
}

func appendF32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

func appendVec3(b []byte, v mgl32.Vec3) []byte {
	b = appendF32(b, v[0])
	b = appendF32(b, v[1])
	return appendF32(b, v[2])
}
