package panel

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/alkime/radiopanel/internal/control"
)

// Control names. They key the profile overrides, the pointer regions and
// the monitor's JSON.
const (
	FreqHundreds   = "freq-hundreds"
	FreqUnits      = "freq-units"
	FreqTenths     = "freq-tenths"
	FreqHundredths = "freq-hundredths"
	Channel        = "channel"
	Mode           = "mode"
	Function       = "function"
	Volume         = "volume"
)

// Mode and function positions.
const (
	ModeManual = "MANUAL"
	ModePreset = "PRESET"
	ModeGuard  = "GUARD"

	FunctionOff  = "OFF"
	FunctionMain = "MAIN"
	FunctionBoth = "BOTH"
	FunctionADF  = "ADF"
)

// ErrInvalidProfile is returned when a panel profile fails validation.
var ErrInvalidProfile = errors.New("invalid panel profile")

// Profile is the panel-wide configuration, usually loaded from YAML.
type Profile struct {
	GuardFrequency string         `yaml:"guard_frequency"`
	Presets        map[int]string `yaml:"presets"`
	// Controls replaces the constant set of a built-in control by name.
	Controls map[string]control.Profile `yaml:"controls"`
	// Knobs are extra rotary knobs shown under the main panel.
	Knobs   []KnobSpec `yaml:"knobs"`
	Initial Initial    `yaml:"initial"`
	Tone    Tone       `yaml:"tone"`
	// NoiseGain is the static gain at full volume.
	NoiseGain float64 `yaml:"noise_gain"`
}

// Initial is the state the panel powers up in.
type Initial struct {
	Frequency string  `yaml:"frequency"`
	Channel   int     `yaml:"channel"`
	Mode      string  `yaml:"mode"`
	Function  string  `yaml:"function"`
	Volume    float64 `yaml:"volume"`
	Squelch   bool    `yaml:"squelch"`
}

// Tone is the test tone played while the tone button is held.
type Tone struct {
	FrequencyHz float64 `yaml:"frequency_hz"`
	Gain        float64 `yaml:"gain"`
}

// KnobSpec describes a generic rotary knob. Kind selects the rotary
// profile: discrete-circular or discrete-bounded.
type KnobSpec struct {
	Name    string       `yaml:"name"`
	Kind    control.Kind `yaml:"kind"`
	Options []string     `yaml:"options"`
	Initial string       `yaml:"initial"`
}

// Profile returns the rotary constant set for the knob's kind.
func (k KnobSpec) Profile() (control.Profile, error) {
	switch k.Kind {
	case control.DiscreteCircular:
		return control.RotaryCircular, nil
	case control.DiscreteBounded:
		return control.RotaryBounded, nil
	}

	return control.Profile{}, fmt.Errorf("knob %q: kind %s is not a rotary kind", k.Name, k.Kind)
}

// DefaultProfile is the stock panel: 20 presets and the
// 243.00 MHz guard channel.
func DefaultProfile() Profile {
	return Profile{
		GuardFrequency: "243.00",
		Presets: map[int]string{
			1: "250.00", 2: "251.25", 3: "255.50", 4: "260.00", 5: "270.00",
			6: "280.00", 7: "290.00", 8: "300.00", 9: "305.00", 10: "310.00",
			11: "315.00", 12: "320.00", 13: "325.00", 14: "305.75", 15: "335.00",
			16: "340.00", 17: "350.00", 18: "360.00", 19: "370.00", 20: "380.00",
		},
		Controls: map[string]control.Profile{},
		Initial: Initial{
			Frequency: "305.75",
			Channel:   14,
			Mode:      ModeManual,
			Function:  FunctionOff,
			Volume:    50,
			Squelch:   true,
		},
		Tone:      Tone{FrequencyHz: 1020, Gain: 0.3},
		NoiseGain: 0.15,
	}
}

// ChannelCount is the size of the preset table.
func (p Profile) ChannelCount() int { return len(p.Presets) }

// Preset returns the frequency stored for a channel.
func (p Profile) Preset(channel int) (Frequency, bool) {
	s, ok := p.Presets[channel]
	if !ok {
		return Frequency{}, false
	}

	f, err := ParseFrequency(s)
	if err != nil {
		return Frequency{}, false
	}

	return f, true
}

// builtins are the stock constant sets of the eight panel controls. An
// override may retune them but not change their kind: the derived state reads
// each control's value the way its kind reports it.
var builtins = map[string]control.Profile{
	FreqHundreds:   control.FrequencyDigit,
	FreqUnits:      control.FrequencyDigit,
	FreqTenths:     control.FrequencyDigit,
	FreqHundredths: control.FrequencyDigit,
	Channel:        control.ChannelWheel,
	Mode:           control.ModeSelector,
	Function:       control.FunctionSelector,
	Volume:         control.VolumeKnob,
}

// BuiltinProfile returns the stock constant set of a panel control.
func BuiltinProfile(name string) (control.Profile, bool) {
	cp, ok := builtins[name]
	return cp, ok
}

// ControlProfile returns the override for name, or def when there is none.
func (p Profile) ControlProfile(name string, def control.Profile) control.Profile {
	if cp, ok := p.Controls[name]; ok {
		return cp
	}

	return def
}

// Validate checks the profile is usable by New.
func (p Profile) Validate() error {
	if _, err := ParseFrequency(p.GuardFrequency); err != nil {
		return fmt.Errorf("%w: guard frequency: %w", ErrInvalidProfile, err)
	}

	if len(p.Presets) == 0 {
		return fmt.Errorf("%w: no presets", ErrInvalidProfile)
	}

	// channels are 1..N with no gaps
	for i, ch := range slices.Sorted(maps.Keys(p.Presets)) {
		if ch != i+1 {
			return fmt.Errorf("%w: preset channels must run 1..%d, found %d", ErrInvalidProfile, len(p.Presets), ch)
		}

		if _, err := ParseFrequency(p.Presets[ch]); err != nil {
			return fmt.Errorf("%w: preset %d: %w", ErrInvalidProfile, ch, err)
		}
	}

	for name, cp := range p.Controls {
		def, ok := builtins[name]
		if !ok {
			return fmt.Errorf("%w: control %q: no such panel control", ErrInvalidProfile, name)
		}

		if cp.Kind != def.Kind {
			return fmt.Errorf("%w: control %q: kind %s cannot replace %s", ErrInvalidProfile, name, cp.Kind, def.Kind)
		}

		if err := cp.Validate(); err != nil {
			return fmt.Errorf("%w: control %q: %w", ErrInvalidProfile, name, err)
		}
	}

	if _, err := ParseFrequency(p.Initial.Frequency); err != nil {
		return fmt.Errorf("%w: initial frequency: %w", ErrInvalidProfile, err)
	}

	if p.Initial.Channel < 1 || p.Initial.Channel > len(p.Presets) {
		return fmt.Errorf("%w: initial channel %d outside 1..%d", ErrInvalidProfile, p.Initial.Channel, len(p.Presets))
	}

	if p.Tone.FrequencyHz <= 0 {
		return fmt.Errorf("%w: tone frequency must be positive", ErrInvalidProfile)
	}

	if p.Tone.Gain < 0 || p.Tone.Gain > 1 || p.NoiseGain < 0 || p.NoiseGain > 1 {
		return fmt.Errorf("%w: gains must be within [0, 1]", ErrInvalidProfile)
	}

	seen := map[string]bool{}
	for _, k := range p.Knobs {
		if k.Name == "" || seen[k.Name] {
			return fmt.Errorf("%w: knob names must be unique and non-empty", ErrInvalidProfile)
		}
		seen[k.Name] = true

		if _, err := k.Profile(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		}
	}

	return nil
}
