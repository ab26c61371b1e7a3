package control

import "math"

// Point is an absolute pointer sample in host coordinates.
type Point struct {
	X, Y float64
}

// Geometry is the static placement of a control as reported by the layout.
type Geometry struct {
	// Center is the visual center of the control.
	Center Point
	// Aspect scales vertical distances before angles are computed. Terminal
	// cells are about twice as tall as they are wide. Zero means 1.
	Aspect float64
	// PixelsPerUnit converts one vertical host unit into the pixels the
	// linear sensitivity is expressed in. Zero means 1.
	PixelsPerUnit float64
}

func (g Geometry) aspect() float64 {
	if g.Aspect <= 0 {
		return 1
	}

	return g.Aspect
}

func (g Geometry) pixelsPerUnit() float64 {
	if g.PixelsPerUnit <= 0 {
		return 1
	}

	return g.PixelsPerUnit
}

// AngleOf returns atan2(dy, dx) in degrees for p relative to the center.
func (g Geometry) AngleOf(p Point) float64 {
	dx := p.X - g.Center.X
	dy := (p.Y - g.Center.Y) * g.aspect()

	return math.Atan2(dy, dx) * (180 / math.Pi)
}

// RightOf reports whether p lies on the right half of the control.
func (g Geometry) RightOf(p Point) bool {
	return p.X-g.Center.X > 0
}

// NormalizeDelta folds an angular difference into (-180, +180].
// Inputs are differences of two atan2 results, so one correction suffices.
func NormalizeDelta(delta float64) float64 {
	if delta > 180 {
		return delta - 360
	}

	if delta <= -180 {
		return delta + 360
	}

	return delta
}
