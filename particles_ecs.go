package sparks

import (
	"math"
	"math/rand"

	"github.com/gekko3d/sparks/pool"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{Position: position, Rotation: mgl32.QuatIdent()}
}

// ParticleEmitterComponent feeds one particle pool.
type ParticleEmitterComponent struct {
	Name    string
	Enabled bool

	Rate          float32    // particles per second
	EmissionArea  float32    // radius of the sphere particles spawn on
	Velocity      mgl32.Vec3 // emitter-local velocity handed to every particle
	InheritMotion bool       // add the emitter's own velocity
	Burst         int        // particles emitted at once on the first frame
	Lifetime      float32    // seconds of emission, 0 emits forever
	Settings      pool.Settings

	Id uuid.UUID

	pool     *pool.Pool
	spawnAcc float32
	age      float32
	lastPos  mgl32.Vec3
	hasLast  bool
	bursted  bool
	failed   bool
}

// Pool is nil until the emitter has run through its first Update stage.
func (em *ParticleEmitterComponent) Pool() *pool.Pool { return em.pool }

// Expired reports whether a finite emitter has stopped emitting for good.
func (em *ParticleEmitterComponent) Expired() bool {
	return em.Lifetime > 0 && em.age >= em.Lifetime
}

type ParticlesModule struct {
	// Seed makes emission deterministic when non-zero.
	Seed int64
}

func (m ParticlesModule) Install(app *App, cmd *Commands) {
	if m.Seed != 0 {
		app.emitters.Seed(m.Seed)
	}
	if _, ok := Resource[Camera](app); !ok {
		cmd.AddResources(DefaultCamera())
	}
	app.UseSystem(System(particleEmitSystem).InStage(Update))
	app.UseSystem(System(particlePoolSystem).InStage(PostUpdate))
	app.UseSystem(System(particleFlushSystem).InStage(PreRender))
	app.UseSystem(System(particleDrawSystem).InStage(Render))
}

func (e *Emitters) ensurePool(em *ParticleEmitterComponent, log Logger) *pool.Pool {
	if em.pool != nil || em.failed {
		return em.pool
	}
	p, err := pool.New(em.Settings, pool.WithRand(rand.New(rand.NewSource(e.rng.Int63()))))
	if err != nil {
		EmitterLogger(log, em.Name, em.Id).Errorf("%v", err)
		em.failed = true
		return nil
	}
	em.pool = p
	return p
}

func particleEmitSystem(t *Time, emitters *Emitters, cmd *Commands) {
	dt := t.Seconds()
	log := cmd.Logger()

	emitters.Each(func(tr *TransformComponent, em *ParticleEmitterComponent) bool {
		p := emitters.ensurePool(em, log)
		if p == nil {
			return true
		}

		var motion mgl32.Vec3
		if em.hasLast && dt > 0 {
			motion = tr.Position.Sub(em.lastPos).Mul(1 / dt)
		}
		em.lastPos = tr.Position
		em.hasLast = true

		if !em.Enabled || em.Expired() {
			em.spawnAcc = 0
			return true
		}
		em.age += dt

		velocity := rotate(tr.Rotation, em.Velocity)
		if em.InheritMotion {
			velocity = velocity.Add(motion)
		}

		em.spawnAcc += em.Rate * dt
		n := int(em.spawnAcc)
		em.spawnAcc -= float32(n)
		if !em.bursted {
			n += em.Burst
			em.bursted = true
		}
		for i := 0; i < n; i++ {
			position := tr.Position
			if em.EmissionArea > 0 {
				position = position.Add(randomOnUnitSphere(emitters.rng).Mul(em.EmissionArea))
			}
			p.AddParticle(position, velocity)
		}
		return true
	})
}

func particlePoolSystem(t *Time, emitters *Emitters, cmd *Commands) {
	dt := t.Seconds()
	emitters.Each(func(tr *TransformComponent, em *ParticleEmitterComponent) bool {
		if em.pool == nil {
			return true
		}
		if err := em.pool.Update(dt); err != nil {
			EmitterLogger(cmd.Logger(), em.Name, em.Id).Errorf("%v", err)
		}
		return true
	})
}

func particleFlushSystem(rs *RendererState, emitters *Emitters) {
	emitters.Each(func(tr *TransformComponent, em *ParticleEmitterComponent) bool {
		if em.pool == nil {
			return true
		}
		em.pool.Flush(rs.Renderer.UploadSink(em))
		return true
	})
}

func particleDrawSystem(rs *RendererState, emitters *Emitters, cam *Camera, cmd *Commands) {
	if err := rs.Renderer.BeginFrame(cam); err != nil {
		cmd.Logger().Warnf("%s: skipping frame: %v", rs.Name, err)
		return
	}
	emitters.Each(func(tr *TransformComponent, em *ParticleEmitterComponent) bool {
		if em.pool == nil {
			return true
		}
		em.pool.CollectDrawRange(rs.Renderer.DrawSink(em))
		return true
	})
	if err := rs.Renderer.EndFrame(); err != nil {
		cmd.Logger().Errorf("%s: %v", rs.Name, err)
	}
}

// rotate treats the zero quaternion as identity so literal transforms work.
func rotate(q mgl32.Quat, v mgl32.Vec3) mgl32.Vec3 {
	if q.W == 0 && q.V.Len() == 0 {
		return v
	}
	return q.Rotate(v)
}

// randomOnUnitSphere picks a uniformly distributed point on the unit sphere's
// surface, so emitters spawn on a shell of radius EmissionArea.
func randomOnUnitSphere(rng *rand.Rand) mgl32.Vec3 {
	z := rng.Float64()*2 - 1
	phi := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return mgl32.Vec3{
		float32(r * math.Cos(phi)),
		float32(z),
		float32(r * math.Sin(phi)),
	}
}
