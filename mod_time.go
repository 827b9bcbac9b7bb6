package sparks

import (
	"time"
)

type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

// Seconds is the last frame delta in seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule advances Time in Prelude. A non-zero FixedDt replaces the wall
// clock with a fixed step.
type TimeModule struct {
	FixedDt time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
		Dt:   0,
	})
	if mod.FixedDt > 0 {
		step := mod.FixedDt
		app.UseSystem(System(func(t *Time) { fixedTimeSystem(t, step) }).InStage(Prelude))
		return
	}
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
	timeResource.Frame++
}

func fixedTimeSystem(timeResource *Time, step time.Duration) {
	timeResource.Dt = step
	timeResource.Time = timeResource.Time.Add(step)
	timeResource.Frame++
}
