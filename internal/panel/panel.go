// Package panel composes the radio's controls and derives the device state
// from their positions.
//
// Every control is independent; the panel only listens to their change
// callbacks. Each accepted change recomputes the DeviceState, updates the
// audio sink and publishes a snapshot to subscribers.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/alkime/radiopanel/internal/control"
	"github.com/alkime/radiopanel/pkg/channels"
	"github.com/alkime/radiopanel/pkg/uictl"
)

// AudioSink is the audio output the panel drives. The panel owns the
// decision of what plays; the sink owns the device.
type AudioSink interface {
	SetNoise(on bool, gain float64) error
	StartTone(freqHz, gain float64) error
	StopTone() error
}

// DeviceState is the composite state derived from the controls.
type DeviceState struct {
	Seq            uint64            `json:"seq"`
	Frequency      string            `json:"frequency"`
	FrequencyParts Frequency         `json:"frequency_parts"`
	Mode           string            `json:"mode"`
	Function       string            `json:"function"`
	PoweredOn      bool              `json:"powered_on"`
	Volume         int               `json:"volume"`
	Squelch        bool              `json:"squelch"`
	PresetChannel  int               `json:"preset_channel"`
	Guard          bool              `json:"guard"`
	ToneHeld       bool              `json:"tone_held"`
	ToneActive     bool              `json:"tone_active"`
	StaticActive   bool              `json:"static_active"`
	Knobs          map[string]string `json:"knobs,omitempty"`
}

// Option configures a Panel.
type Option func(*Panel)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Panel) { p.logger = l }
}

// WithSubscriberTimeout makes every subscriber added later wait up to d for
// room instead of dropping snapshots.
func WithSubscriberTimeout(d time.Duration) Option {
	return func(p *Panel) { p.subTimeout = d }
}

// Panel is the panel-level state holder. Its methods and the controls it
// hands out must be used from a single goroutine; State is safe to call
// from anywhere.
type Panel struct {
	profile Profile
	sink    AudioSink
	logger  *slog.Logger

	controls map[string]*control.Control
	order    []string
	knobs    []string

	squelch   bool
	toneHeld  bool
	toneOn    bool
	noiseOn   bool
	noiseGain float64
	seq       uint64

	snapshot    atomic.Pointer[DeviceState]
	broadcaster *channels.Broadcaster[DeviceState]
	subscribed  bool
	subTimeout  time.Duration
	updates     chan<- DeviceState
}

// New builds the panel described by profile. A nil sink disables audio.
func New(profile Profile, sink AudioSink, opts ...Option) (*Panel, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	p := &Panel{
		profile:     profile,
		sink:        sink,
		logger:      slog.Default(),
		controls:    map[string]*control.Control{},
		squelch:     profile.Initial.Squelch,
		broadcaster: channels.NewBroadcaster[DeviceState](),
	}

	for _, opt := range opts {
		opt(p)
	}

	freq, err := ParseFrequency(profile.Initial.Frequency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	configs := []control.Config{
		{Name: FreqHundreds, Profile: builtins[FreqHundreds], Options: HundredsOptions, Initial: freq.Hundreds},
		{Name: FreqUnits, Profile: builtins[FreqUnits], Options: DigitOptions, Initial: freq.Units},
		{Name: FreqTenths, Profile: builtins[FreqTenths], Options: DigitOptions, Initial: freq.Tenths},
		{Name: FreqHundredths, Profile: builtins[FreqHundredths], Options: HundredthsOptions, Initial: freq.Hundredths},
		{
			Name:    Channel,
			Profile: builtins[Channel],
			Options: control.NumberedOptions(1, profile.ChannelCount()),
			Initial: strconv.Itoa(profile.Initial.Channel),
		},
		{
			Name:    Mode,
			Profile: builtins[Mode],
			Options: []string{ModeManual, ModePreset, ModeGuard},
			Initial: profile.Initial.Mode,
		},
		{
			Name:    Function,
			Profile: builtins[Function],
			Options: []string{FunctionOff, FunctionMain, FunctionBoth, FunctionADF},
			Initial: profile.Initial.Function,
		},
		{
			Name:         Volume,
			Profile:      builtins[Volume],
			Bounds:       control.Bounds{Min: 0, Max: 100},
			InitialValue: profile.Initial.Volume,
		},
	}

	for _, k := range profile.Knobs {
		kp, err := k.Profile()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		}

		configs = append(configs, control.Config{Name: k.Name, Profile: kp, Options: k.Options, Initial: k.Initial})
		p.knobs = append(p.knobs, k.Name)
	}

	for _, cfg := range configs {
		if _, dup := p.controls[cfg.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate control %q", ErrInvalidProfile, cfg.Name)
		}

		cfg.Profile = profile.ControlProfile(cfg.Name, cfg.Profile)
		cfg.OnChange = p.changed

		c, err := control.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create control: %w", err)
		}

		p.controls[cfg.Name] = c
		p.order = append(p.order, cfg.Name)
	}

	p.refresh()

	return p, nil
}

// Profile returns the profile the panel was built from.
func (p *Panel) Profile() Profile { return p.profile }

// Control returns the control called name.
func (p *Panel) Control(name string) (*control.Control, bool) {
	c, ok := p.controls[name]
	return c, ok
}

// Controls returns every control in panel order, extra knobs last.
func (p *Panel) Controls() []*control.Control {
	out := make([]*control.Control, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.controls[name])
	}

	return out
}

// KnobNames returns the names of the extra rotary knobs.
func (p *Panel) KnobNames() []string { return append([]string(nil), p.knobs...) }

// State returns the latest snapshot.
func (p *Panel) State() DeviceState {
	return *p.snapshot.Load()
}

// Squelch exposes the squelch switch as a toggle control.
func (p *Panel) Squelch() uictl.Knob { return squelchSwitch{p} }

type squelchSwitch struct{ p *Panel }

func (s squelchSwitch) Read() bool { return s.p.squelch }
func (s squelchSwitch) On()        { s.p.SetSquelch(true) }
func (s squelchSwitch) Off()       { s.p.SetSquelch(false) }
func (s squelchSwitch) Toggle()    { s.p.ToggleSquelch() }

// ToggleSquelch flips the squelch switch.
func (p *Panel) ToggleSquelch() { p.SetSquelch(!p.squelch) }

// SetSquelch sets the squelch switch.
func (p *Panel) SetSquelch(on bool) {
	if p.squelch == on {
		return
	}

	p.squelch = on
	p.logger.Debug("squelch changed", "on", on)
	p.refresh()
}

// PressTone holds the tone button down. The tone sounds only while the
// radio is powered.
func (p *Panel) PressTone() {
	if p.toneHeld {
		return
	}

	p.toneHeld = true
	p.refresh()
}

// ReleaseTone lets go of the tone button.
func (p *Panel) ReleaseTone() {
	if !p.toneHeld {
		return
	}

	p.toneHeld = false
	p.refresh()
}

// ToneHeld reports whether the tone button is down.
func (p *Panel) ToneHeld() bool { return p.toneHeld }

// Subscribe registers ch for state snapshots. Must be called before Start.
// Without a subscriber timeout a full ch loses snapshots.
func (p *Panel) Subscribe(ch chan<- DeviceState) error {
	var err error
	if p.subTimeout > 0 {
		err = p.broadcaster.SubscribeWithTimeout(ch, p.subTimeout)
	} else {
		err = p.broadcaster.Subscribe(ch)
	}

	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	p.subscribed = true

	return nil
}

// Start begins publishing snapshots until ctx is done. Without subscribers
// it does nothing.
func (p *Panel) Start(ctx context.Context) error {
	if !p.subscribed {
		return nil
	}

	updates, err := p.broadcaster.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to start state broadcaster: %w", err)
	}

	p.updates = updates

	return nil
}

// Wait blocks until published snapshots have been delivered after the
// Start context is done.
func (p *Panel) Wait() {
	if p.updates != nil {
		p.broadcaster.Wait()
	}
}

// Close silences the audio sink.
func (p *Panel) Close() error {
	if p.sink == nil {
		return nil
	}

	var errs []error
	if p.toneOn {
		errs = append(errs, p.sink.StopTone())
		p.toneOn = false
	}

	if p.noiseOn {
		errs = append(errs, p.sink.SetNoise(false, 0))
		p.noiseOn = false
	}

	return errors.Join(errs...)
}

func (p *Panel) changed(ch control.Change) {
	p.logger.Debug("control changed", "control", ch.Name, "option", ch.Option, "value", ch.Value)
	p.refresh()
}

func (p *Panel) refresh() {
	p.syncAudio()

	p.seq++
	state := p.derive()
	p.snapshot.Store(&state)

	if p.updates == nil {
		return
	}

	if err := channels.SendNonBlock(p.updates, state); err != nil {
		p.logger.Debug("state snapshot dropped", "seq", state.Seq, "error", err)
	}
}

func (p *Panel) derive() DeviceState {
	mode := p.controls[Mode].Option()
	function := p.controls[Function].Option()
	channel := int(p.controls[Channel].Value())

	var freq Frequency

	switch mode {
	case ModeGuard:
		freq, _ = ParseFrequency(p.profile.GuardFrequency)
	case ModePreset:
		freq, _ = p.profile.Preset(channel)
	default:
		freq = Frequency{
			Hundreds:   p.controls[FreqHundreds].Option(),
			Units:      p.controls[FreqUnits].Option(),
			Tenths:     p.controls[FreqTenths].Option(),
			Hundredths: p.controls[FreqHundredths].Option(),
		}
	}

	state := DeviceState{
		Seq:            p.seq,
		Frequency:      freq.String(),
		FrequencyParts: freq,
		Mode:           mode,
		Function:       function,
		PoweredOn:      function != FunctionOff,
		Volume:         int(p.controls[Volume].Value()),
		Squelch:        p.squelch,
		PresetChannel:  channel,
		Guard:          mode == ModeGuard,
		ToneHeld:       p.toneHeld,
		ToneActive:     p.toneOn,
		StaticActive:   p.noiseOn,
	}

	if len(p.knobs) > 0 {
		state.Knobs = make(map[string]string, len(p.knobs))
		for _, name := range p.knobs {
			state.Knobs[name] = p.controls[name].Option()
		}
	}

	return state
}

// syncAudio makes the sink match the controls: static while powered with
// squelch open, the tone while powered with the button held.
func (p *Panel) syncAudio() {
	powered := p.controls[Function].Option() != FunctionOff
	wantNoise := powered && !p.squelch
	gain := p.controls[Volume].Value() / 100 * p.profile.NoiseGain
	wantTone := powered && p.toneHeld

	if p.sink == nil {
		p.noiseOn, p.toneOn = wantNoise, wantTone
		p.noiseGain = gain

		return
	}

	if wantNoise != p.noiseOn || (wantNoise && gain != p.noiseGain) {
		if err := p.sink.SetNoise(wantNoise, gain); err != nil {
			p.logger.Warn("failed to update static", "error", err)
		} else {
			p.noiseOn, p.noiseGain = wantNoise, gain
		}
	}

	if wantTone == p.toneOn {
		return
	}

	var err error
	if wantTone {
		err = p.sink.StartTone(p.profile.Tone.FrequencyHz, p.profile.Tone.Gain)
	} else {
		err = p.sink.StopTone()
	}

	if err != nil {
		p.logger.Warn("failed to switch tone", "on", wantTone, "error", err)
		return
	}

	p.toneOn = wantTone
}
