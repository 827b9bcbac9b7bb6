package sparks

// LifecycleModule removes finite emitters once they stopped emitting and the
// renderer no longer references any of their slots.
type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(emitterLifetimeSystem).InStage(PostUpdate))
}

func emitterLifetimeSystem(emitters *Emitters, cmd *Commands) {
	emitters.Each(func(tr *TransformComponent, em *ParticleEmitterComponent) bool {
		if !em.Expired() {
			return true
		}
		// Live counts retired slots too, so this waits out the latency window.
		if p := em.Pool(); p == nil || p.Live() == 0 {
			cmd.Logger().Debugf("Lifecycle removing emitter %s (%s)", em.Id, em.Name)
			cmd.RemoveEmitter(em.Id)
		}
		return true
	})
}
