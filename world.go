package sparks

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
)

// Emitters is the entity world holding every particle emitter. It is
// installed as a resource by NewAppBuilder.
type Emitters struct {
	world  *ecs.World
	mapper *ecs.Map2[TransformComponent, ParticleEmitterComponent]
	filter *ecs.Filter2[TransformComponent, ParticleEmitterComponent]
	byId   map[uuid.UUID]ecs.Entity

	rng *rand.Rand
}

func NewEmitters() *Emitters {
	world := ecs.NewWorld()
	return &Emitters{
		world:  world,
		mapper: ecs.NewMap2[TransformComponent, ParticleEmitterComponent](world),
		filter: ecs.NewFilter2[TransformComponent, ParticleEmitterComponent](world),
		byId:   make(map[uuid.UUID]ecs.Entity),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes emission offsets and newly created pools deterministic.
func (e *Emitters) Seed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// Spawn adds an emitter entity. Must not be called while iterating.
func (e *Emitters) Spawn(transform TransformComponent, emitter ParticleEmitterComponent) ecs.Entity {
	if emitter.Id == uuid.Nil {
		emitter.Id = uuid.New()
	}
	entity := e.mapper.NewEntity(&transform, &emitter)
	e.byId[emitter.Id] = entity
	return entity
}

// Remove destroys the emitter with the given id and its pool.
func (e *Emitters) Remove(id uuid.UUID) bool {
	entity, ok := e.byId[id]
	if !ok {
		return false
	}
	delete(e.byId, id)
	if !e.world.Alive(entity) {
		return false
	}
	e.world.RemoveEntity(entity)
	return true
}

func (e *Emitters) Get(id uuid.UUID) (*TransformComponent, *ParticleEmitterComponent, bool) {
	entity, ok := e.byId[id]
	if !ok || !e.world.Alive(entity) {
		return nil, nil, false
	}
	tr, em := e.mapper.Get(entity)
	return tr, em, true
}

func (e *Emitters) Len() int { return len(e.byId) }

// Each visits emitters until fn returns false. The world is locked during
// the walk: use Commands to add or remove emitters.
func (e *Emitters) Each(fn func(tr *TransformComponent, em *ParticleEmitterComponent) bool) {
	query := e.filter.Query()
	for query.Next() {
		tr, em := query.Get()
		if !fn(tr, em) {
			query.Close()
			return
		}
	}
}
