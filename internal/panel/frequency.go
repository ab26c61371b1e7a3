package panel

import (
	"fmt"
	"slices"
)

// Option lists of the four frequency knobs.
var (
	HundredsOptions   = []string{"2", "3"}
	DigitOptions      = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	HundredthsOptions = []string{"00", "25", "50", "75"}
)

// Frequency is a UHF frequency split the way the knobs select it.
type Frequency struct {
	Hundreds   string `json:"hundreds"`
	Units      string `json:"units"`
	Tenths     string `json:"tenths"`
	Hundredths string `json:"hundredths"`
}

// String renders the frequency as "305.75".
func (f Frequency) String() string {
	return f.Hundreds + f.Units + f.Tenths + "." + f.Hundredths
}

// ParseFrequency splits "305.75" into knob positions. Every part must be a
// position one of the knobs can select.
func ParseFrequency(s string) (Frequency, error) {
	if len(s) != 6 || s[3] != '.' {
		return Frequency{}, fmt.Errorf("frequency %q: want the form 305.75", s)
	}

	f := Frequency{
		Hundreds:   s[0:1],
		Units:      s[1:2],
		Tenths:     s[2:3],
		Hundredths: s[4:6],
	}

	switch {
	case !slices.Contains(HundredsOptions, f.Hundreds),
		!slices.Contains(DigitOptions, f.Units),
		!slices.Contains(DigitOptions, f.Tenths),
		!slices.Contains(HundredthsOptions, f.Hundredths):
		return Frequency{}, fmt.Errorf("frequency %q: not selectable on the panel", s)
	}

	return f, nil
}
