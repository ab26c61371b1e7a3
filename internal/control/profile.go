package control

import (
	"errors"
	"fmt"
)

// Profile is the constant set shared by the value mapper and the renderer
// for one control. Both sides read the same numbers so a knob's drawn
// rotation always agrees with the value it reports.
type Profile struct {
	Kind Kind `yaml:"kind"`
	// Sensitivity is degrees per step for angular discrete kinds and
	// pixels per step for the linear kind. Unused by ContinuousBounded.
	Sensitivity float64 `yaml:"sensitivity"`
	// SweepDegrees is the rotation between the first and last position
	// for DiscreteBounded, and the full-scale sweep for ContinuousBounded.
	SweepDegrees float64 `yaml:"sweep_degrees"`
	// BaseAngle is the rotation drawn for the first position.
	BaseAngle float64 `yaml:"base_angle"`
}

// Profiles of the stock panel controls.
var (
	FrequencyDigit   = Profile{Kind: DiscreteCircular, Sensitivity: 10}
	ModeSelector     = Profile{Kind: DiscreteBounded, Sensitivity: 30, SweepDegrees: 90, BaseAngle: -45}
	FunctionSelector = Profile{Kind: DiscreteBounded, Sensitivity: 25, SweepDegrees: 120, BaseAngle: -60}
	VolumeKnob       = Profile{Kind: ContinuousBounded, SweepDegrees: 270, BaseAngle: -135}
	ChannelWheel     = Profile{Kind: LinearBoundedWrap, Sensitivity: 15}
	RotaryCircular   = Profile{Kind: DiscreteCircular, Sensitivity: 3, BaseAngle: -90}
	RotaryBounded    = Profile{Kind: DiscreteBounded, Sensitivity: 8, SweepDegrees: 270, BaseAngle: -135}
)

// Validate checks the constants a Profile's kind depends on.
func (p Profile) Validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("unknown kind %d", int(p.Kind))
	}

	switch p.Kind {
	case ContinuousBounded:
		if p.SweepDegrees <= 0 {
			return errors.New("sweep must be positive for a continuous control")
		}
	case DiscreteBounded:
		if p.SweepDegrees < 0 {
			return errors.New("sweep must not be negative")
		}
		fallthrough
	default:
		if p.Sensitivity <= 0 {
			return errors.New("sensitivity must be positive")
		}
	}

	return nil
}

// Angle projects a discrete index onto the rotation drawn for it.
// The linear kind has no rotation and reports ok == false.
func (p Profile) Angle(index, n int) (angle float64, ok bool) {
	switch p.Kind {
	case DiscreteCircular:
		if n <= 0 {
			return p.BaseAngle, true
		}

		return p.BaseAngle + float64(index)/float64(n)*360, true

	case DiscreteBounded:
		if n < 2 {
			return p.BaseAngle, true
		}

		return p.BaseAngle + float64(index)*(p.SweepDegrees/float64(n-1)), true
	}

	return 0, false
}

// AngleForValue projects a continuous value onto its rotation.
func (p Profile) AngleForValue(v float64, b Bounds) (angle float64, ok bool) {
	if p.Kind != ContinuousBounded || b.Span() <= 0 {
		return 0, false
	}

	return p.BaseAngle + (v-b.Min)/b.Span()*p.SweepDegrees, true
}

// StepDegrees is the rotation between two adjacent discrete positions.
func (p Profile) StepDegrees(n int) float64 {
	switch p.Kind {
	case DiscreteCircular:
		if n > 0 {
			return 360 / float64(n)
		}
	case DiscreteBounded:
		if n > 1 {
			return p.SweepDegrees / float64(n-1)
		}
	}

	return 0
}

// Bounds is the numeric range of a continuous control.
type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Span returns Max - Min.
func (b Bounds) Span() float64 {
	return b.Max - b.Min
}

// Clamp limits v to [Min, Max].
func (b Bounds) Clamp(v float64) float64 {
	return min(max(v, b.Min), b.Max)
}
