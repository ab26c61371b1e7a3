// Package pointer routes host pointer events to on-screen targets.
//
// A press hit-tests the registered regions and hands the target a Capture.
// While the capture is held every move is delivered to that target no matter
// where the pointer is, and the capture is released exactly once when the
// button goes up or input capture is lost.
package pointer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alkime/radiopanel/internal/control"
)

// DefaultDoubleClickWindow is the longest gap between two presses on the
// same region that still counts as a double activation.
const DefaultDoubleClickWindow = 400 * time.Millisecond

// ErrNoTarget is returned by Press when no region is under the pointer.
var ErrNoTarget = errors.New("no target under pointer")

// Target receives the gesture lifecycle for one region.
type Target interface {
	Press(p control.Point, g control.Geometry) error
	Move(p control.Point) error
	Release()
}

// DoubleActivator is implemented by targets with a gesture-free step action.
type DoubleActivator interface {
	DoubleActivate(p control.Point, g control.Geometry)
}

// Rect is an axis-aligned area in host cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Center is the visual center of the rectangle.
func (r Rect) Center() control.Point {
	return control.Point{
		X: float64(r.X) + float64(r.W-1)/2,
		Y: float64(r.Y) + float64(r.H-1)/2,
	}
}

// Region binds a named screen area to its target.
type Region struct {
	Name     string
	Rect     Rect
	Target   Target
	Geometry control.Geometry
}

// Options configures a Router.
type Options struct {
	// Aspect is the vertical stretch of a host cell. Zero means 1.
	Aspect float64
	// PixelsPerUnit is how many pixels one cell row stands for. Zero means 1.
	PixelsPerUnit     float64
	DoubleClickWindow time.Duration
	Logger            *slog.Logger
	Now               func() time.Time
}

// Router owns the global listening capability: at most one Capture exists.
type Router struct {
	opts    Options
	regions []Region
	capture *Capture

	lastPressName string
	lastPressAt   time.Time
	// moved is set once the current or last gesture saw a move.
	moved bool
}

// NewRouter creates a router with no regions.
func NewRouter(opts Options) *Router {
	if opts.DoubleClickWindow <= 0 {
		opts.DoubleClickWindow = DefaultDoubleClickWindow
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Router{opts: opts}
}

// Register adds or replaces the region called name.
func (r *Router) Register(name string, rect Rect, t Target) {
	region := Region{
		Name:   name,
		Rect:   rect,
		Target: t,
		Geometry: control.Geometry{
			Center:        rect.Center(),
			Aspect:        r.opts.Aspect,
			PixelsPerUnit: r.opts.PixelsPerUnit,
		},
	}

	for i := range r.regions {
		if r.regions[i].Name == name {
			r.regions[i] = region
			return
		}
	}

	r.regions = append(r.regions, region)
}

// Region looks up a region by name.
func (r *Router) Region(name string) (Region, bool) {
	for _, reg := range r.regions {
		if reg.Name == name {
			return reg, true
		}
	}

	return Region{}, false
}

// Hit returns the region under the cell (x, y).
func (r *Router) Hit(x, y int) (Region, bool) {
	for _, reg := range r.regions {
		if reg.Rect.Contains(x, y) {
			return reg, true
		}
	}

	return Region{}, false
}

// Captured returns the name of the region holding the capture.
func (r *Router) Captured() (string, bool) {
	if r.capture == nil {
		return "", false
	}

	return r.capture.region.Name, true
}

// Press starts a gesture on the region under p. A second press on the same
// region inside the double-click window is delivered as a double activation
// instead, unless the first press was dragged. It returns the name of the region that handled the press.
func (r *Router) Press(p control.Point) (string, error) {
	// A press while captured means the release was never seen.
	if r.capture != nil {
		r.opts.Logger.Debug("pointer press while captured, releasing", "region", r.capture.region.Name)
		r.capture.Release()
	}

	reg, ok := r.Hit(int(p.X), int(p.Y))
	if !ok {
		return "", ErrNoTarget
	}

	now := r.opts.Now()
	double := reg.Name == r.lastPressName &&
		now.Sub(r.lastPressAt) <= r.opts.DoubleClickWindow &&
		!r.moved

	if double && r.DoubleActivate(p) {
		r.lastPressName = ""
		return reg.Name, nil
	}

	r.lastPressName, r.lastPressAt = reg.Name, now

	if _, err := r.Acquire(reg, p); err != nil {
		return reg.Name, err
	}

	return reg.Name, nil
}

// DoubleActivate forwards a step action to the region under p. It reports
// whether a target handled it.
func (r *Router) DoubleActivate(p control.Point) bool {
	reg, ok := r.Hit(int(p.X), int(p.Y))
	if !ok {
		return false
	}

	da, ok := reg.Target.(DoubleActivator)
	if !ok {
		return false
	}

	da.DoubleActivate(p, reg.Geometry)

	return true
}

// Acquire hands reg the capture and begins its gesture at p.
func (r *Router) Acquire(reg Region, p control.Point) (*Capture, error) {
	if r.capture != nil {
		r.capture.Release()
	}

	if err := reg.Target.Press(p, reg.Geometry); err != nil {
		return nil, fmt.Errorf("failed to begin gesture on %q: %w", reg.Name, err)
	}

	r.capture = &Capture{router: r, region: reg}
	r.moved = false

	return r.capture, nil
}

// Move forwards p to the captured target. Without a capture it is ignored.
func (r *Router) Move(p control.Point) error {
	if r.capture == nil {
		return nil
	}

	r.moved = true

	if err := r.capture.region.Target.Move(p); err != nil {
		return fmt.Errorf("failed to update gesture on %q: %w", r.capture.region.Name, err)
	}

	return nil
}

// Release ends the active gesture, if any.
func (r *Router) Release() {
	if r.capture != nil {
		r.capture.Release()
	}
}

// Cancel is called when input capture is lost (focus change, shutdown).
// There is no revert: it ends the gesture like a release.
func (r *Router) Cancel() {
	r.Release()
}

// Capture is the scoped right to receive every pointer move.
type Capture struct {
	router   *Router
	region   Region
	released bool
}

// Region is the region holding this capture.
func (c *Capture) Region() Region { return c.region }

// Release ends the target's gesture and frees the router. Safe to call
// more than once.
func (c *Capture) Release() {
	if c.released {
		return
	}

	c.released = true
	c.region.Target.Release()

	if c.router.capture == c {
		c.router.capture = nil
	}
}
