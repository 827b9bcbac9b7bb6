package sparks

import (
	"github.com/gekko3d/sparks/telemetry"
)

// TelemetryState is the resource behind TelemetryModule.
type TelemetryState struct {
	Collector *telemetry.Collector
	Output    *telemetry.OutputManager
	Interval  uint64

	pending []telemetry.PoolSample
}

// TelemetryModule samples every pool each IntervalFrames frames in
// PostRender, streams the samples to Output and logs a summary on shutdown.
// A nil Output only collects.
type TelemetryModule struct {
	IntervalFrames int
	Output         *telemetry.OutputManager
}

func (m TelemetryModule) Install(app *App, cmd *Commands) {
	interval := uint64(m.IntervalFrames)
	if interval == 0 {
		interval = 1
	}
	cmd.AddResources(&TelemetryState{
		Collector: telemetry.NewCollector(),
		Output:    m.Output,
		Interval:  interval,
	})
	app.UseSystem(System(telemetrySampleSystem).InStage(PostRender))
	app.UseSystem(System(telemetrySummarySystem).InStage(Shutdown))
}

func telemetrySampleSystem(ts *TelemetryState, t *Time, emitters *Emitters, cmd *Commands) {
	if t.Frame%ts.Interval != 0 {
		return
	}
	ts.pending = ts.pending[:0]
	emitters.Each(func(tr *TransformComponent, em *ParticleEmitterComponent) bool {
		if p := em.Pool(); p != nil {
			ts.pending = append(ts.pending, ts.Collector.Record(t.Frame, em.Id, em.Name, p))
		}
		return true
	})
	if err := ts.Output.WriteSamples(ts.pending); err != nil {
		cmd.Logger().Errorf("telemetry: %v", err)
	}
}

func telemetrySummarySystem(ts *TelemetryState, cmd *Commands) {
	log := cmd.Logger()
	for _, s := range ts.Collector.Summary() {
		log.Infof("%s: %d samples, live mean %.1f sd %.1f p90 %.0f max %d, dropped %d",
			s.Name, s.Samples, s.MeanLive, s.StdLive, s.P90Live, s.MaxLive, s.Dropped)
	}
	if err := ts.Output.Close(); err != nil {
		log.Errorf("telemetry: %v", err)
	}
	if dir := ts.Output.Dir(); dir != "" {
		log.Infof("telemetry written to %s", dir)
	}
}
