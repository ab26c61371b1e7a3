package control

import "math"

// Each policy is a pure function of the gesture's reference position and the
// current displacement. None of them remember earlier updates.

// Steps converts a displacement into whole steps. Halves round toward
// positive infinity.
func Steps(delta, sensitivity float64) int {
	if sensitivity <= 0 {
		return 0
	}

	return int(roundHalfUp(delta / sensitivity))
}

// MapCircular wraps ref+steps into [0, n).
func MapCircular(ref, steps, n int) int {
	if n <= 0 {
		return 0
	}

	return ((ref+steps)%n + n) % n
}

// MapBounded clamps ref+steps into [0, n-1].
func MapBounded(ref, steps, n int) int {
	if n <= 0 {
		return 0
	}

	return min(max(ref+steps, 0), n-1)
}

// MapContinuous scales an angular delta by the full sweep onto the bounds
// and clamps the result. The result is not rounded.
func MapContinuous(ref, delta, fullSweep float64, b Bounds) float64 {
	if fullSweep <= 0 {
		return b.Clamp(ref)
	}

	return b.Clamp(ref + (delta/fullSweep)*b.Span())
}

// MapLinearWrap moves a 1-based position by steps and wraps a single step at
// either boundary: past n lands on 1, below 1 lands on n. Large overshoots do
// not carry over, matching a dial that cycles digit by digit.
func MapLinearWrap(pos, steps, n int) int {
	if n <= 0 {
		return 1
	}

	c := pos + steps
	if c > n {
		c = 1
	}

	if c < 1 {
		c = n
	}

	return c
}

// RoundValue rounds a continuous candidate to the integer step it is
// reported as.
func RoundValue(v float64) float64 {
	return roundHalfUp(v)
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// mapIndex applies the index policy of kind to a 0-based reference index.
func mapIndex(kind Kind, ref, steps, n int) int {
	switch kind {
	case DiscreteCircular:
		return MapCircular(ref, steps, n)
	case LinearBoundedWrap:
		return MapLinearWrap(ref+1, steps, n) - 1
	default:
		return MapBounded(ref, steps, n)
	}
}
