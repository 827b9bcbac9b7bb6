package sparks

import (
	"bytes"
	"testing"
	"time"

	"github.com/gekko3d/sparks/pool"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = mgl32.Vec3{}

// testEmitter spawns two particles per 250ms frame with no random velocity.
func testEmitter(name string) ParticleEmitterComponent {
	s := pool.DefaultSettings()
	s.Capacity = 64
	s.Duration = 1
	s.MinHorizontalVelocity, s.MaxHorizontalVelocity = 0, 0
	s.MinVerticalVelocity, s.MaxVerticalVelocity = 0, 0
	return ParticleEmitterComponent{
		Name:     name,
		Enabled:  true,
		Rate:     8,
		Settings: s,
	}
}

type particlesFixture struct {
	app      *App
	renderer *HeadlessRenderer
	logs     *bytes.Buffer
}

func newParticlesFixture(t *testing.T, emitters ...ParticleEmitterComponent) (*particlesFixture, []uuid.UUID) {
	t.Helper()
	f := &particlesFixture{logs: &bytes.Buffer{}}
	var ids []uuid.UUID
	f.app = NewAppBuilder().
		UseModule(
			installFunc(func(app *App, cmd *Commands) {
				cmd.AddResources(newWriterLogger("test", true, f.logs))
			}),
			TimeModule{FixedDt: 250 * time.Millisecond},
			ParticlesModule{Seed: 1},
			installFunc(func(app *App, cmd *Commands) {
				for _, em := range emitters {
					ids = append(ids, cmd.AddEmitter(NewTransform(origin), em))
				}
			}),
		).
		Build()
	f.renderer = f.app.UseHeadless()
	return f, ids
}

func (f *particlesFixture) steps(n int) {
	for i := 0; i < n; i++ {
		f.app.Step()
	}
}

func TestParticles_EmitFlushDraw(t *testing.T) {
	f, ids := newParticlesFixture(t, testEmitter("fire"))
	_, em, ok := f.app.emitters.Get(ids[0])
	require.True(t, ok)

	f.steps(1)
	p := em.Pool()
	require.NotNil(t, p)
	assert.Equal(t, pool.Counts{Active: 2, Free: 62}, p.Counts())
	assert.Equal(t, 2, f.renderer.Uploaded)
	assert.Equal(t, 2, f.renderer.Drawn)
	assert.Equal(t, 1, f.renderer.DrawCalls)
	assert.False(t, f.renderer.InFrame)

	f.steps(2)
	assert.Equal(t, 6, f.renderer.Drawn)
	assert.Equal(t, float64(0.75), p.SimulationTime())

	// Frame 4 reaches the 1s duration of the first two particles.
	f.steps(1)
	c := p.Counts()
	assert.Equal(t, 2, c.Retired)
	assert.Equal(t, 6, c.Active)
	assert.Equal(t, 6, f.renderer.Drawn)
	assert.Equal(t, 4, f.renderer.Frames)

	mirror := f.renderer.Mirror(ids[0])
	for i := 0; i < 8; i++ {
		want := p.Particle(i)
		want.RetiredAtFrame = 0
		assert.Equal(t, want, mirror[i], "slot %d", i)
	}
}

func TestParticles_RetiredSlotsRecycleAfterLatency(t *testing.T) {
	em := testEmitter("fire")
	em.Rate = 4 // one particle per frame
	f, ids := newParticlesFixture(t, em)
	_, comp, _ := f.app.emitters.Get(ids[0])

	f.steps(20)
	c := comp.Pool().Counts()
	// Steady state: three frames of live particles, three frames of retired ones.
	assert.Equal(t, 3, c.Active)
	assert.Equal(t, pool.DefaultRetirementLatencyFrames, c.Retired)
	assert.Zero(t, comp.Pool().Dropped())
}

func TestParticles_DisabledEmitterSpawnsNothing(t *testing.T) {
	em := testEmitter("off")
	em.Enabled = false
	f, ids := newParticlesFixture(t, em)
	_, comp, _ := f.app.emitters.Get(ids[0])

	f.steps(3)
	require.NotNil(t, comp.Pool())
	assert.Zero(t, comp.Pool().Live())
	assert.Zero(t, f.renderer.DrawCalls)
	assert.Equal(t, 3, f.renderer.Frames)
}

func TestParticles_EmissionArea(t *testing.T) {
	em := testEmitter("area")
	em.EmissionArea = 3
	em.Rate = 400
	f, ids := newParticlesFixture(t, em)
	_, comp, _ := f.app.emitters.Get(ids[0])

	f.steps(1)
	p := comp.Pool()
	require.Equal(t, 63, p.Live())
	spread := false
	for i := 0; i < p.Live(); i++ {
		pos := p.Particle(i).Position
		assert.InDelta(t, 3, pos.Len(), 1e-4)
		if pos.Sub(p.Particle(0).Position).Len() > 0.5 {
			spread = true
		}
	}
	assert.True(t, spread)
	assert.Equal(t, uint64(37), p.Dropped())
}

func TestParticles_InheritMotion(t *testing.T) {
	em := testEmitter("moving")
	em.InheritMotion = true
	em.Velocity = mgl32.Vec3{0, 1, 0}
	f, ids := newParticlesFixture(t, em)
	tr, comp, _ := f.app.emitters.Get(ids[0])

	f.steps(1)
	tr.Position = mgl32.Vec3{1, 0, 0}
	f.steps(1)

	p := comp.Pool()
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, p.Particle(0).Velocity)
	assert.Equal(t, mgl32.Vec3{4, 1, 0}, p.Particle(2).Velocity)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, p.Particle(2).Position)
}

func TestParticles_RotationAppliesToVelocity(t *testing.T) {
	em := testEmitter("rotated")
	em.Velocity = mgl32.Vec3{0, 2, 0}
	f, ids := newParticlesFixture(t, em)
	tr, comp, _ := f.app.emitters.Get(ids[0])
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})

	f.steps(1)
	v := comp.Pool().Particle(0).Velocity
	assert.InDelta(t, -2, v.X(), 1e-5)
	assert.InDelta(t, 0, v.Y(), 1e-5)
}

func TestParticles_InvalidSettingsAreLogged(t *testing.T) {
	bad := testEmitter("bad")
	bad.Settings.Capacity = 1
	f, ids := newParticlesFixture(t, bad, testEmitter("good"))

	f.steps(2)
	_, badComp, _ := f.app.emitters.Get(ids[0])
	_, goodComp, _ := f.app.emitters.Get(ids[1])
	assert.Nil(t, badComp.Pool())
	assert.Equal(t, 4, goodComp.Pool().Live())
	// Logged once, not every frame.
	assert.Equal(t, 1, bytes.Count(f.logs.Bytes(), []byte("capacity must be at least 2")))
}

func TestParticles_RemoveEmitter(t *testing.T) {
	f, ids := newParticlesFixture(t, testEmitter("a"), testEmitter("b"))
	f.steps(1)
	require.NotNil(t, f.renderer.Mirror(ids[0]))

	f.app.Commands().RemoveEmitter(ids[0])
	f.app.FlushCommands()

	assert.Equal(t, 1, f.app.emitters.Len())
	assert.Nil(t, f.renderer.Mirror(ids[0]))
	_, _, ok := f.app.emitters.Get(ids[0])
	assert.False(t, ok)

	f.steps(1)
	assert.Equal(t, 4, f.renderer.Drawn)
}

func TestParticles_RemoveUnknownEmitterWarns(t *testing.T) {
	f, _ := newParticlesFixture(t)
	f.app.Commands().RemoveEmitter(uuid.New())
	f.app.FlushCommands()
	assert.Contains(t, f.logs.String(), "WARN: remove emitter")
}

func TestParticles_RemoveQueuedEmitter(t *testing.T) {
	f, _ := newParticlesFixture(t)
	cmd := f.app.Commands()
	id := cmd.AddEmitter(NewTransform(origin), testEmitter("short"))
	cmd.RemoveEmitter(id)
	f.app.FlushCommands()

	assert.Equal(t, 0, f.app.emitters.Len())
	assert.NotContains(t, f.logs.String(), "WARN")
}

func TestRandomOnUnitSphere(t *testing.T) {
	f, _ := newParticlesFixture(t)
	rng := f.app.emitters.rng
	var sum mgl32.Vec3
	for i := 0; i < 1000; i++ {
		v := randomOnUnitSphere(rng)
		assert.InDelta(t, 1, v.Len(), 1e-5)
		sum = sum.Add(v)
	}
	// Uniform directions average out near the centre.
	assert.Less(t, sum.Mul(1.0/1000).Len(), float32(0.15))
}
