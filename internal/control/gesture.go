package control

// Tracker turns raw pointer samples into a one-dimensional displacement:
// an angle around the control's center or a vertical pixel offset.
type Tracker struct {
	kind     Kind
	geometry Geometry
}

// NewTracker returns a tracker measuring gestures the way kind expects.
func NewTracker(kind Kind, g Geometry) Tracker {
	return Tracker{kind: kind, geometry: g}
}

// Coordinate is the tracked quantity for p: degrees for angular kinds, raw
// vertical position for the linear kind.
func (t Tracker) Coordinate(p Point) float64 {
	if t.kind.Angular() {
		return t.geometry.AngleOf(p)
	}

	return p.Y
}

// Delta compares p against the reference coordinate. Angular deltas are
// normalized into (-180, +180]. Linear deltas grow as the pointer moves up.
func (t Tracker) Delta(reference float64, p Point) float64 {
	if t.kind.Angular() {
		return NormalizeDelta(t.Coordinate(p) - reference)
	}

	return (reference - p.Y) * t.geometry.pixelsPerUnit()
}

// Session is the state of one press-drag-release interaction on a control.
type Session struct {
	tracker    Tracker
	refCoord   float64
	refIndex   int
	refValue   float64
	ended      bool
	lastDelta  float64
	hasUpdates bool
}

// ReferenceCoordinate is the angle or position captured at Begin.
func (s *Session) ReferenceCoordinate() float64 { return s.refCoord }

// ReferenceIndex is the control's index captured at Begin.
func (s *Session) ReferenceIndex() int { return s.refIndex }

// ReferenceValue is the continuous value captured at Begin.
func (s *Session) ReferenceValue() float64 { return s.refValue }

// Ended reports whether the session has been terminated.
func (s *Session) Ended() bool { return s.ended }

// LastDelta is the displacement computed by the most recent update.
func (s *Session) LastDelta() (float64, bool) { return s.lastDelta, s.hasUpdates }

func (s *Session) delta(p Point) float64 {
	d := s.tracker.Delta(s.refCoord, p)
	s.lastDelta = d
	s.hasUpdates = true

	return d
}
