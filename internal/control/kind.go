package control

import (
	"fmt"
	"strings"
)

// Kind selects the mapping policy a Control applies to gesture displacement.
type Kind int

const (
	// DiscreteCircular cycles through a fixed option list with no end stops.
	DiscreteCircular Kind = iota + 1
	// DiscreteBounded selects from a fixed option list with end stops.
	DiscreteBounded
	// ContinuousBounded holds a number within [min, max].
	ContinuousBounded
	// LinearBoundedWrap is dragged vertically over a 1-based option list and
	// wraps one step at a time at both ends.
	LinearBoundedWrap
)

var kindNames = map[Kind]string{
	DiscreteCircular:  "discrete-circular",
	DiscreteBounded:   "discrete-bounded",
	ContinuousBounded: "continuous-bounded",
	LinearBoundedWrap: "linear-bounded-wrap",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Angular reports whether gestures on this kind are measured as an angle
// around the control's center rather than a vertical coordinate.
func (k Kind) Angular() bool {
	return k == DiscreteCircular || k == DiscreteBounded || k == ContinuousBounded
}

// Discrete reports whether the kind selects from an option list.
func (k Kind) Discrete() bool {
	return k != ContinuousBounded
}

// ParseKind parses the textual form produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == want {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown control kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown control kind %d", int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so kinds can be read
// from YAML and environment values.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
