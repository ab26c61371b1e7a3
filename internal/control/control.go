// Package control converts pointer drags into discrete or continuous control
// values.
//
// A Control is one on-screen input (knob, selector, channel wheel). It owns at
// most one gesture Session at a time, maps the session's displacement through
// the policy selected by its Kind, and invokes its change callback only when
// the committed value actually changes.
package control

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/alkime/radiopanel/pkg/uictl"
)

var _ uictl.Selector = (*Control)(nil)

var (
	// ErrInvalidControl is returned when a control is built with inputs that
	// violate its kind's preconditions.
	ErrInvalidControl = errors.New("invalid control")
	// ErrGestureActive is returned by Begin while a session is in progress.
	ErrGestureActive = errors.New("gesture already active")
	// ErrNoGesture is returned by Update when no session is in progress.
	ErrNoGesture = errors.New("no active gesture")
)

// Change describes one accepted step transition.
type Change struct {
	Name   string
	Kind   Kind
	Index  int
	Option string
	// Value is the committed number: the rounded value for continuous
	// controls, the 1-based position for the linear kind and the index for
	// discrete kinds.
	Value float64
}

// Config describes a control at construction time.
type Config struct {
	Name    string
	Profile Profile
	// Options is the ordered option list for discrete and linear kinds.
	Options []string
	// Bounds is the range of a continuous control.
	Bounds Bounds
	// Initial selects the starting option. Empty selects the first one.
	Initial string
	// InitialValue is the starting value of a continuous control.
	InitialValue float64
	OnChange     func(Change)
}

// Control is one interactive input with a current value and a mapping policy.
type Control struct {
	name     string
	profile  Profile
	options  []string
	bounds   Bounds
	index    int
	value    float64
	onChange func(Change)
	session  *Session
}

// New validates cfg and builds a Control.
func New(cfg Config) (*Control, error) {
	if err := cfg.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidControl, cfg.Name, err)
	}

	c := &Control{
		name:     cfg.Name,
		profile:  cfg.Profile,
		options:  slices.Clone(cfg.Options),
		bounds:   cfg.Bounds,
		onChange: cfg.OnChange,
	}

	if cfg.Profile.Kind == ContinuousBounded {
		if cfg.Bounds.Min >= cfg.Bounds.Max {
			return nil, fmt.Errorf("%w %q: min %v must be below max %v",
				ErrInvalidControl, cfg.Name, cfg.Bounds.Min, cfg.Bounds.Max)
		}

		if cfg.InitialValue < cfg.Bounds.Min || cfg.InitialValue > cfg.Bounds.Max {
			return nil, fmt.Errorf("%w %q: initial value %v outside [%v, %v]",
				ErrInvalidControl, cfg.Name, cfg.InitialValue, cfg.Bounds.Min, cfg.Bounds.Max)
		}

		c.value = RoundValue(cfg.InitialValue)

		return c, nil
	}

	if len(cfg.Options) == 0 {
		return nil, fmt.Errorf("%w %q: no options", ErrInvalidControl, cfg.Name)
	}

	if cfg.Initial != "" {
		c.index = slices.Index(c.options, cfg.Initial)
		if c.index < 0 {
			return nil, fmt.Errorf("%w %q: initial option %q not in options",
				ErrInvalidControl, cfg.Name, cfg.Initial)
		}
	}

	c.value = c.numberFor(c.index)

	return c, nil
}

// MustNew is New for static tables; it panics on error.
func MustNew(cfg Config) *Control {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}

	return c
}

// NumberedOptions returns the options "from".."to" in order.
func NumberedOptions(from, to int) []string {
	opts := make([]string, 0, max(to-from+1, 0))
	for i := from; i <= to; i++ {
		opts = append(opts, strconv.Itoa(i))
	}

	return opts
}

func (c *Control) Name() string            { return c.name }
func (c *Control) Kind() Kind              { return c.profile.Kind }
func (c *Control) Profile() Profile        { return c.profile }
func (c *Control) Bounds() Bounds          { return c.bounds }
func (c *Control) Options() []string       { return slices.Clone(c.options) }
func (c *Control) Index() int              { return c.index }
func (c *Control) Active() bool            { return c.session != nil }
func (c *Control) Session() *Session       { return c.session }
func (c *Control) OnChange(f func(Change)) { c.onChange = f }

// Option returns the selected option, or "" for a continuous control.
func (c *Control) Option() string {
	if c.profile.Kind == ContinuousBounded {
		return ""
	}

	return c.options[c.index]
}

// Value returns the committed number (see Change.Value).
func (c *Control) Value() float64 { return c.value }

// Read implements uictl.Dial.
func (c *Control) Read() float64 { return c.value }

// Angle is the rotation the renderer draws for the current value. The
// linear kind has none.
func (c *Control) Angle() (float64, bool) {
	if c.profile.Kind == ContinuousBounded {
		return c.profile.AngleForValue(c.value, c.bounds)
	}

	return c.profile.Angle(c.index, len(c.options))
}

// Begin starts a gesture at p. Only one gesture may be active per control.
func (c *Control) Begin(p Point, g Geometry) (*Session, error) {
	if c.session != nil {
		return nil, fmt.Errorf("%q: %w", c.name, ErrGestureActive)
	}

	t := NewTracker(c.profile.Kind, g)
	c.session = &Session{
		tracker:  t,
		refCoord: t.Coordinate(p),
		refIndex: c.index,
		refValue: c.value,
	}

	return c.session, nil
}

// Update maps the pointer sample p through the active session and commits
// the candidate. It reports whether the committed value changed.
func (c *Control) Update(p Point) (bool, error) {
	if c.session == nil {
		return false, fmt.Errorf("%q: %w", c.name, ErrNoGesture)
	}

	return c.Apply(c.session.delta(p)), nil
}

// Apply maps a displacement relative to the active session's reference. With
// no session the current value is the reference.
func (c *Control) Apply(delta float64) bool {
	refIndex, refValue := c.index, c.value
	if c.session != nil {
		refIndex, refValue = c.session.refIndex, c.session.refValue
	}

	if c.profile.Kind == ContinuousBounded {
		candidate := MapContinuous(refValue, delta, c.profile.SweepDegrees, c.bounds)
		return c.commitValue(RoundValue(candidate))
	}

	steps := Steps(delta, c.profile.Sensitivity)

	return c.commitIndex(mapIndex(c.profile.Kind, refIndex, steps, len(c.options)))
}

// End terminates the active gesture. The value committed by the last update
// stays. Calling End without a gesture is a no-op.
func (c *Control) End() {
	if c.session == nil {
		return
	}

	c.session.ended = true
	c.session = nil
}

// Step moves the value one step in the sign of direction, using the same
// wrap or clamp rule as a drag. Continuous controls move by one unit.
func (c *Control) Step(direction int) bool {
	dir := sign(direction)
	if dir == 0 {
		return false
	}

	if c.profile.Kind == ContinuousBounded {
		return c.commitValue(c.bounds.Clamp(c.value + float64(dir)))
	}

	return c.commitIndex(mapIndex(c.profile.Kind, c.index, dir, len(c.options)))
}

// StepFromSide steps forward when p is on the right half of the control and
// backward otherwise.
func (c *Control) StepFromSide(p Point, g Geometry) bool {
	if g.RightOf(p) {
		return c.Step(1)
	}

	return c.Step(-1)
}

func (c *Control) commitIndex(idx int) bool {
	// Policies already keep idx in range; guard anyway so no caller can
	// index past the option list.
	idx = min(max(idx, 0), len(c.options)-1)
	if idx == c.index {
		return false
	}

	c.index = idx
	c.value = c.numberFor(idx)
	c.notify()

	return true
}

func (c *Control) commitValue(v float64) bool {
	v = c.bounds.Clamp(v)
	if v == c.value {
		return false
	}

	c.value = v
	c.notify()

	return true
}

func (c *Control) numberFor(idx int) float64 {
	if c.profile.Kind == LinearBoundedWrap {
		return float64(idx + 1)
	}

	return float64(idx)
}

func (c *Control) notify() {
	if c.onChange == nil {
		return
	}

	c.onChange(Change{
		Name:   c.name,
		Kind:   c.profile.Kind,
		Index:  c.index,
		Option: c.Option(),
		Value:  c.value,
	})
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}

	return 0
}
