// Package pool implements a fixed-capacity particle ring shared between a CPU
// simulation and a renderer that consumes it a few frames late.
//
// The ring is split by four cursors into contiguous arcs, in order:
//
//	retired -> active -> new -> free -> (retired)
//
// AddParticle claims the head of the free arc, Flush publishes the new arc to
// an UploadSink and makes it active, Update retires expired particles and
// recycles retired slots once the renderer can no longer be reading them.
// Particles are never allocated or destroyed individually.
package pool

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// UploadSink receives newly published particles. The slice aliases pool storage
// for slots [start, start+len(particles)) and is only valid during the call.
type UploadSink interface {
	UploadRange(start int, particles []Particle)
}

// DrawSink receives the drawable span of the ring.
type DrawSink interface {
	DrawRange(start, count int)
}

// UploadFunc adapts a function to UploadSink.
type UploadFunc func(start int, particles []Particle)

func (f UploadFunc) UploadRange(start int, particles []Particle) { f(start, particles) }

// DrawFunc adapts a function to DrawSink.
type DrawFunc func(start, count int)

func (f DrawFunc) DrawRange(start, count int) { f(start, count) }

type Option func(p *Pool)

// WithRand makes velocity and seed generation deterministic.
func WithRand(r *rand.Rand) Option {
	return func(p *Pool) {
		p.rng = r
	}
}

type Pool struct {
	settings Settings
	records  []Particle

	activeStart  int
	newStart     int
	freeStart    int
	retiredStart int

	simulationTime float64
	frameCounter   uint64

	dropped uint64
	rng     *rand.Rand
}

func New(settings Settings, opts ...Option) (*Pool, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{
		settings: settings,
		records:  make([]Particle, settings.Capacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p, nil
}

// Update advances the pool by dt seconds. It must be called exactly once per
// rendered frame, before Flush and CollectDrawRange, because the frame counter
// it maintains is what guarantees the renderer is done with retired slots.
func (p *Pool) Update(dt float32) error {
	if dt < 0 || math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) {
		return fmt.Errorf("%w: frame delta must be a finite non-negative number of seconds, got %v", ErrInvalidArgument, dt)
	}

	p.simulationTime += float64(dt)
	p.frameCounter++

	p.retireActive()
	p.freeRetired()

	// Time only matters while something can be drawn.
	if p.activeStart == p.freeStart {
		p.simulationTime = 0
	}
	if p.retiredStart == p.activeStart && p.activeStart == p.newStart {
		p.frameCounter = 0
	}
	return nil
}

// retireActive moves expired particles from the active arc to the retired arc.
// Spawn times are non-decreasing along the arc, so the first live particle ends
// the scan.
func (p *Pool) retireActive() {
	duration := float64(p.settings.Duration)
	for p.activeStart != p.newStart {
		rec := &p.records[p.activeStart]
		if p.simulationTime-rec.SpawnTime < duration {
			break
		}
		rec.RetiredAtFrame = p.frameCounter
		p.activeStart = p.next(p.activeStart)
	}
}

// freeRetired recycles retired slots that have waited out the latency window.
func (p *Pool) freeRetired() {
	latency := uint64(p.settings.RetirementLatencyFrames)
	for p.retiredStart != p.activeStart {
		age := p.frameCounter - p.records[p.retiredStart].RetiredAtFrame
		if age < latency {
			break
		}
		p.retiredStart = p.next(p.retiredStart)
	}
}

// AddParticle writes a particle into the next free slot. When the ring is full
// the particle is dropped and false is returned; this is not an error.
// The particle stays invisible to the renderer until the next Flush.
func (p *Pool) AddParticle(position, velocity mgl32.Vec3) bool {
	nextFree := p.next(p.freeStart)
	if nextFree == p.retiredStart {
		p.dropped++
		return false
	}

	s := &p.settings
	velocity = velocity.Mul(s.EmitterVelocitySensitivity)

	horizontal := lerp(s.MinHorizontalVelocity, s.MaxHorizontalVelocity, p.rng.Float32())
	angle := p.rng.Float64() * 2 * math.Pi
	velocity[0] += horizontal * float32(math.Cos(angle))
	velocity[2] += horizontal * float32(math.Sin(angle))
	velocity[1] += lerp(s.MinVerticalVelocity, s.MaxVerticalVelocity, p.rng.Float32())

	var seed [4]uint8
	for i := range seed {
		seed[i] = uint8(p.rng.Intn(256))
	}

	p.records[p.freeStart] = Particle{
		Position:  position,
		Velocity:  velocity,
		SpawnTime: p.simulationTime,
		Random:    seed,
	}
	p.freeStart = nextFree
	return true
}

// Flush hands the new arc to sink, in at most two ranges, and promotes it to
// active. It returns the number of particles published. A nil sink still
// promotes the particles.
func (p *Pool) Flush(sink UploadSink) int {
	if p.newStart == p.freeStart {
		return 0
	}
	n := 0
	for _, r := range p.NewRanges() {
		if sink != nil {
			sink.UploadRange(r.Start, p.records[r.Start:r.Start+r.Count])
		}
		n += r.Count
	}
	p.newStart = p.freeStart
	return n
}

// CollectDrawRange reports the active arc to sink in at most two ranges. It
// returns false when there is nothing to draw. Particles added since the last
// Flush are not drawn: the renderer has not received them yet.
func (p *Pool) CollectDrawRange(sink DrawSink) bool {
	if p.activeStart == p.newStart {
		return false
	}
	if sink != nil {
		for _, r := range p.DrawRanges() {
			sink.DrawRange(r.Start, r.Count)
		}
	}
	return true
}

// Reupload sends every slot the renderer may currently be drawing, which is
// everything already flushed and not yet retired. Use it after the renderer
// lost its buffer contents.
func (p *Pool) Reupload(sink UploadSink) int {
	n := 0
	for _, r := range splitArc(p.activeStart, p.newStart, len(p.records)) {
		sink.UploadRange(r.Start, p.records[r.Start:r.Start+r.Count])
		n += r.Count
	}
	return n
}

// NewRanges returns the new arc split at the end of the ring.
func (p *Pool) NewRanges() []Range {
	return splitArc(p.newStart, p.freeStart, len(p.records))
}

// DrawRanges returns the active arc split at the end of the ring.
func (p *Pool) DrawRanges() []Range {
	return splitArc(p.activeStart, p.newStart, len(p.records))
}

func splitArc(start, end, capacity int) []Range {
	switch {
	case start == end:
		return nil
	case start < end:
		return []Range{{Start: start, Count: end - start}}
	case end == 0:
		return []Range{{Start: start, Count: capacity - start}}
	default:
		return []Range{{Start: start, Count: capacity - start}, {Start: 0, Count: end}}
	}
}

func (p *Pool) Capacity() int           { return len(p.records) }
func (p *Pool) Settings() Settings      { return p.settings }
func (p *Pool) SimulationTime() float64 { return p.simulationTime }
func (p *Pool) Frame() uint64           { return p.frameCounter }
func (p *Pool) Dropped() uint64         { return p.dropped }
func (p *Pool) Particle(i int) Particle { return p.records[i] }
func (p *Pool) Live() int               { return len(p.records) - p.Counts().Free }

func (p *Pool) Cursors() Cursors {
	return Cursors{
		ActiveStart:  p.activeStart,
		NewStart:     p.newStart,
		FreeStart:    p.freeStart,
		RetiredStart: p.retiredStart,
	}
}

func (p *Pool) Counts() Counts {
	c := Counts{
		Retired: p.dist(p.retiredStart, p.activeStart),
		Active:  p.dist(p.activeStart, p.newStart),
		New:     p.dist(p.newStart, p.freeStart),
	}
	c.Free = len(p.records) - c.Retired - c.Active - c.New
	return c
}

// ArcOf reports which arc slot i currently belongs to.
func (p *Pool) ArcOf(i int) Arc {
	d := p.dist(p.retiredStart, i)
	switch {
	case d < p.dist(p.retiredStart, p.activeStart):
		return ArcRetired
	case d < p.dist(p.retiredStart, p.newStart):
		return ArcActive
	case d < p.dist(p.retiredStart, p.freeStart):
		return ArcNew
	}
	return ArcFree
}

func (p *Pool) next(i int) int {
	i++
	if i >= len(p.records) {
		return 0
	}
	return i
}

// dist is the forward distance from a to b around the ring.
func (p *Pool) dist(a, b int) int {
	n := len(p.records)
	return ((b-a)%n + n) % n
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }
