package sparks

import "github.com/google/uuid"

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEmitter queues an emitter entity; it joins the world when the current
// stage ends. The returned id is final and can be passed to RemoveEmitter
// right away.
func (cmd *Commands) AddEmitter(transform TransformComponent, emitter ParticleEmitterComponent) uuid.UUID {
	if emitter.Id == uuid.Nil {
		emitter.Id = uuid.New()
	}
	cmd.app.pendingEmitters = append(cmd.app.pendingEmitters, pendingEmitter{
		transform: transform,
		emitter:   emitter,
	})
	return emitter.Id
}

func (cmd *Commands) RemoveEmitter(id uuid.UUID) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, id)
}

// Exit makes the current frame the last one.
func (cmd *Commands) Exit() {
	cmd.app.exiting = true
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

func (cmd *Commands) Frame() uint64 {
	return cmd.app.frames
}
