// Package uictl defines the small control interfaces UI components read from
// and drive, so views never depend on the concrete panel types.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Knob is a simple on/off toggle control.
type Knob interface {
	Read() bool
	On()
	Off()
	Toggle()
}

// Dial is a control that can read some value.
type Dial[N Number] interface {
	Read() N
}

// Stepper is a Dial that can be nudged one step at a time.
type Stepper[N Number] interface {
	Dial[N]
	Step(direction int) bool
}

// Selector is a Stepper over a named option list.
type Selector interface {
	Stepper[float64]
	Option() string
	Options() []string
}

// Levels is a control that can read multiple levels.
type Levels[N Number] interface {
	Read() []N
}
