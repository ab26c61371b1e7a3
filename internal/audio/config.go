package audio

import (
	"errors"

	"github.com/gen2brain/malgo"
)

const (
	// DefaultSampleRate is the playback rate in Hz.
	DefaultSampleRate = 44100
	// DefaultChannels is mono (1 channel).
	DefaultChannels = 1
	// NoiseSeconds is the length of the looping white-noise buffer.
	NoiseSeconds = 2
	// MeterSamples is how many recent output samples the level meter keeps.
	MeterSamples = 4096
)

// DeviceConfig configures the playback device. Samples are always signed
// 16-bit little-endian.
type DeviceConfig struct {
	// SampleRate is the playback rate in Hz (default: 44100).
	SampleRate int

	// Channels is the number of interleaved output channels (default: 1).
	// Every channel carries the same mono signal.
	Channels int

	// NoiseSeed seeds the white-noise buffer. Zero picks a fixed seed so
	// output is reproducible.
	NoiseSeed uint64
}

// Format is the malgo sample format the synth renders.
func (c DeviceConfig) Format() malgo.FormatType { return malgo.FormatS16 }

// Validate returns an error if the config is invalid.
func (c DeviceConfig) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels < 1 || c.Channels > 2 {
		return errors.New("only mono or stereo output is supported")
	}

	return nil
}

// WithDefaults returns a config with default values applied to zero fields.
func (c DeviceConfig) WithDefaults() DeviceConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	return c
}
