package pool

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultRetirementLatencyFrames is how many frames a retired slot waits before
// it can be reused. The renderer may still be reading a slot up to two frames
// after the CPU retired it; one more frame covers drivers that queue deeper.
const DefaultRetirementLatencyFrames = 3

// Settings are fixed for the lifetime of a Pool.
type Settings struct {
	Capacity int     `yaml:"capacity"`
	Duration float32 `yaml:"duration"` // seconds

	EmitterVelocitySensitivity float32 `yaml:"emitter_velocity_sensitivity"`

	MinHorizontalVelocity float32 `yaml:"min_horizontal_velocity"`
	MaxHorizontalVelocity float32 `yaml:"max_horizontal_velocity"`
	MinVerticalVelocity   float32 `yaml:"min_vertical_velocity"`
	MaxVerticalVelocity   float32 `yaml:"max_vertical_velocity"`

	RetirementLatencyFrames int `yaml:"retirement_latency_frames"`

	Visual VisualSettings `yaml:"visual"`
}

// VisualSettings are consumed by the particle shader only; the pool carries them
// so that an emitter has a single settings block.
type VisualSettings struct {
	DurationRandomness float32    `yaml:"duration_randomness"`
	Gravity            mgl32.Vec3 `yaml:"gravity"`
	EndVelocity        float32    `yaml:"end_velocity"`

	MinColor mgl32.Vec4 `yaml:"min_color"`
	MaxColor mgl32.Vec4 `yaml:"max_color"`

	MinRotateSpeed float32 `yaml:"min_rotate_speed"`
	MaxRotateSpeed float32 `yaml:"max_rotate_speed"`
	MinStartSize   float32 `yaml:"min_start_size"`
	MaxStartSize   float32 `yaml:"max_start_size"`
	MinEndSize     float32 `yaml:"min_end_size"`
	MaxEndSize     float32 `yaml:"max_end_size"`

	Additive bool `yaml:"additive"`
}

// DefaultSettings returns a small fire-like emitter.
func DefaultSettings() Settings {
	return Settings{
		Capacity:                   2400,
		Duration:                   2,
		EmitterVelocitySensitivity: 1,
		MinHorizontalVelocity:      0,
		MaxHorizontalVelocity:      15,
		MinVerticalVelocity:        -10,
		MaxVerticalVelocity:        10,
		RetirementLatencyFrames:    DefaultRetirementLatencyFrames,
		Visual: VisualSettings{
			DurationRandomness: 1,
			Gravity:            mgl32.Vec3{0, 15, 0},
			EndVelocity:        1,
			MinColor:           mgl32.Vec4{1, 1, 1, 0.04},
			MaxColor:           mgl32.Vec4{1, 1, 1, 0.16},
			MinRotateSpeed:     0,
			MaxRotateSpeed:     0,
			MinStartSize:       5,
			MaxStartSize:       10,
			MinEndSize:         10,
			MaxEndSize:         40,
			Additive:           true,
		},
	}
}

func (s Settings) Validate() error {
	if s.Capacity < 2 {
		return fmt.Errorf("%w: capacity must be at least 2, got %d", ErrInvalidSettings, s.Capacity)
	}
	if !(s.Duration > 0) || math.IsInf(float64(s.Duration), 0) {
		return fmt.Errorf("%w: duration must be a positive number of seconds, got %v", ErrInvalidSettings, s.Duration)
	}
	if s.RetirementLatencyFrames < 0 {
		return fmt.Errorf("%w: retirement latency must not be negative, got %d", ErrInvalidSettings, s.RetirementLatencyFrames)
	}
	if s.MinHorizontalVelocity > s.MaxHorizontalVelocity {
		return fmt.Errorf("%w: horizontal velocity range [%v, %v] is inverted", ErrInvalidSettings, s.MinHorizontalVelocity, s.MaxHorizontalVelocity)
	}
	if s.MinVerticalVelocity > s.MaxVerticalVelocity {
		return fmt.Errorf("%w: vertical velocity range [%v, %v] is inverted", ErrInvalidSettings, s.MinVerticalVelocity, s.MaxVerticalVelocity)
	}
	return nil
}
