package pool

import "github.com/go-gl/mathgl/mgl32"

// Particle is one slot of the ring. Records are owned by the Pool and addressed
// by index; they are overwritten in place when a slot is reused.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3

	// SpawnTime is the pool simulation time at which the particle was added.
	// Renderers narrow it to float32 when encoding.
	SpawnTime float64
	// RetiredAtFrame is the pool frame counter at retirement. Only meaningful
	// while the slot is in the retired arc.
	RetiredAtFrame uint64

	// Random holds four independent bytes the shader uses for size, rotation
	// and color variation.
	Random [4]uint8
}

// Arc identifies which lifecycle segment of the ring a slot belongs to.
type Arc int

const (
	ArcFree Arc = iota
	ArcNew
	ArcActive
	ArcRetired
)

func (a Arc) String() string {
	switch a {
	case ArcFree:
		return "free"
	case ArcNew:
		return "new"
	case ArcActive:
		return "active"
	case ArcRetired:
		return "retired"
	}
	return "unknown"
}

// Range is a contiguous run of slot indices [Start, Start+Count).
type Range struct {
	Start int
	Count int
}

// Cursors is a snapshot of the four ring cursors.
type Cursors struct {
	ActiveStart  int
	NewStart     int
	FreeStart    int
	RetiredStart int
}

// Counts holds the size of each arc. The four sizes always sum to the capacity.
type Counts struct {
	Active  int
	New     int
	Free    int
	Retired int
}
