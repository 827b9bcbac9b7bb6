// Package config loads the application configuration from YAML.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/sparks/pool"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	App       AppConfig       `yaml:"app"`
	Window    WindowConfig    `yaml:"window"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Camera    CameraConfig    `yaml:"camera"`
	Emitters  []EmitterConfig `yaml:"emitters"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

type AppConfig struct {
	MaxFrames uint64  `yaml:"max_frames"` // 0 runs until the window closes
	FixedDt   float64 `yaml:"fixed_dt"`   // seconds, 0 uses the wall clock
	Headless  bool    `yaml:"headless"`
	Seed      int64   `yaml:"seed"` // 0 seeds from the clock
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

type TelemetryConfig struct {
	Dir            string `yaml:"dir"` // empty disables CSV output
	IntervalFrames int    `yaml:"interval_frames"`
}

type CameraConfig struct {
	Position mgl32.Vec3 `yaml:"position"`
	Target   mgl32.Vec3 `yaml:"target"`
	FovDeg   float32    `yaml:"fov_deg"`
}

type EmitterConfig struct {
	Name          string        `yaml:"name"`
	Enabled       bool          `yaml:"enabled"`
	Position      mgl32.Vec3    `yaml:"position"`
	Rate          float32       `yaml:"rate"`
	EmissionArea  float32       `yaml:"emission_area"`
	Velocity      mgl32.Vec3    `yaml:"velocity"`
	InheritMotion bool          `yaml:"inherit_motion"`
	Burst         int           `yaml:"burst"`
	Lifetime      float32       `yaml:"lifetime"` // seconds, 0 emits forever
	Settings      pool.Settings `yaml:"settings"`
}

type DerivedConfig struct {
	FixedDt time.Duration
}

// UnmarshalYAML starts every list entry from DefaultEmitter so a file only
// has to name what differs.
func (e *EmitterConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain EmitterConfig
	p := plain(DefaultEmitter())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = EmitterConfig(p)
	return nil
}

func DefaultEmitter() EmitterConfig {
	return EmitterConfig{
		Name:     "emitter",
		Enabled:  true,
		Rate:     100,
		Settings: pool.DefaultSettings(),
	}
}

// Load reads the embedded defaults, then overlays the file at path if given.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file; the emitter list is replaced.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.FixedDt < 0 {
		return fmt.Errorf("app.fixed_dt must not be negative, got %v", c.App.FixedDt)
	}
	if c.Telemetry.IntervalFrames < 0 {
		return fmt.Errorf("telemetry.interval_frames must not be negative, got %d", c.Telemetry.IntervalFrames)
	}
	names := make(map[string]bool, len(c.Emitters))
	for i, em := range c.Emitters {
		if names[em.Name] {
			return fmt.Errorf("emitters[%d]: duplicate name %q", i, em.Name)
		}
		names[em.Name] = true
		if em.Rate < 0 || em.EmissionArea < 0 || em.Burst < 0 || em.Lifetime < 0 {
			return fmt.Errorf("emitters[%d] %q: %w: rate, emission_area, burst and lifetime must not be negative", i, em.Name, pool.ErrInvalidSettings)
		}
		if err := em.Settings.Validate(); err != nil {
			return fmt.Errorf("emitters[%d] %q: %w", i, em.Name, err)
		}
	}
	return nil
}

func (c *Config) computeDerived() {
	c.Derived.FixedDt = time.Duration(c.App.FixedDt * float64(time.Second))
	if c.Telemetry.IntervalFrames == 0 {
		c.Telemetry.IntervalFrames = 1
	}
}

// WriteYAML saves the configuration, defaults included, to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
