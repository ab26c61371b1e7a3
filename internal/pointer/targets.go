package pointer

import "github.com/alkime/radiopanel/internal/control"

// ControlTarget drives a control.Control from the router.
type ControlTarget struct {
	Control *control.Control
}

func (t ControlTarget) Press(p control.Point, g control.Geometry) error {
	_, err := t.Control.Begin(p, g)
	return err
}

func (t ControlTarget) Move(p control.Point) error {
	_, err := t.Control.Update(p)
	return err
}

func (t ControlTarget) Release() { t.Control.End() }

// DoubleActivate steps the control toward the side that was clicked.
func (t ControlTarget) DoubleActivate(p control.Point, g control.Geometry) {
	t.Control.StepFromSide(p, g)
}

// Button is a momentary target: OnDown fires on press and OnUp on release
// or cancel. Either may be nil.
type Button struct {
	OnDown func()
	OnUp   func()
}

func (b Button) Press(control.Point, control.Geometry) error {
	if b.OnDown != nil {
		b.OnDown()
	}

	return nil
}

func (b Button) Move(control.Point) error { return nil }

func (b Button) Release() {
	if b.OnUp != nil {
		b.OnUp()
	}
}
