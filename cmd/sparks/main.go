package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/sparks"
	"github.com/gekko3d/sparks/config"
	"github.com/gekko3d/sparks/telemetry"
)

const headlessFrames = 600

// sceneModule turns the configuration into the camera and emitter entities.
type sceneModule struct {
	cfg *config.Config
}

func (m sceneModule) Install(app *sparks.App, cmd *sparks.Commands) {
	cam := sparks.DefaultCamera()
	cam.Position = m.cfg.Camera.Position
	cam.Target = m.cfg.Camera.Target
	if m.cfg.Camera.FovDeg > 0 {
		cam.FovY = m.cfg.Camera.FovDeg
	}
	cmd.AddResources(cam)

	for _, ec := range m.cfg.Emitters {
		id := cmd.AddEmitter(sparks.NewTransform(ec.Position), sparks.ParticleEmitterComponent{
			Name:          ec.Name,
			Enabled:       ec.Enabled,
			Rate:          ec.Rate,
			EmissionArea:  ec.EmissionArea,
			Velocity:      ec.Velocity,
			InheritMotion: ec.InheritMotion,
			Burst:         ec.Burst,
			Lifetime:      ec.Lifetime,
			Settings:      ec.Settings,
		})
		cmd.Logger().Infof("emitter %s: %s, capacity %d, %.0f/s", ec.Name, id, ec.Settings.Capacity, ec.Rate)
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config overriding the defaults")
	headless := flag.Bool("headless", false, "simulate without a window")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 = config value)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *headless {
		cfg.App.Headless = true
	}
	if *frames > 0 {
		cfg.App.MaxFrames = *frames
	}
	if *debug {
		cfg.Log.Debug = true
	}

	fixedDt := cfg.Derived.FixedDt
	if cfg.App.Headless {
		if fixedDt == 0 {
			fixedDt = time.Second / 60
		}
		if cfg.App.MaxFrames == 0 {
			cfg.App.MaxFrames = headlessFrames
		}
	}

	out, err := telemetry.NewOutputManager(cfg.Telemetry.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open telemetry output: %v\n", err)
		os.Exit(1)
	}
	if err := out.WriteConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config snapshot: %v\n", err)
		os.Exit(1)
	}

	app := sparks.NewAppBuilder().
		MaxFrames(cfg.App.MaxFrames).
		UseModule(
			sparks.LoggingModule{Prefix: cfg.Log.Prefix, Debug: cfg.Log.Debug},
			sparks.TimeModule{FixedDt: fixedDt},
			sceneModule{cfg: cfg},
			sparks.ParticlesModule{Seed: cfg.App.Seed},
			sparks.LifecycleModule{},
			sparks.TelemetryModule{IntervalFrames: cfg.Telemetry.IntervalFrames, Output: out},
		).
		Build()

	if cfg.App.Headless {
		app.UseHeadless()
	} else {
		app.UseWGPU(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	}

	app.Run()
}
