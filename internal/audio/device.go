package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/radiopanel/pkg/collections"
	"github.com/gen2brain/malgo"
)

// ErrClosed is returned when a closed Player is asked to play.
var ErrClosed = errors.New("player closed")

// Output is an audio sink the panel can drive.
type Output interface {
	SetNoise(on bool, gain float64) error
	StartTone(freqHz, gain float64) error
	StopTone() error
	Close() error
}

// Player plays the synth on the default playback device.
//
// The device is created on first use: the first call that makes the synth
// audible initializes the malgo context and device. When nothing is audible
// any more the device is released again, and Close frees everything.
type Player struct {
	conf   DeviceConfig
	synth  *Synth
	meter  *SampleRingBuffer
	logger *slog.Logger

	mu       sync.Mutex
	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
	closed   bool
}

// NewPlayer creates a player. No device is opened until something plays.
func NewPlayer(conf DeviceConfig, logger *slog.Logger) (*Player, error) {
	conf = conf.WithDefaults()
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		conf:   conf,
		synth:  NewSynth(conf.SampleRate, conf.NoiseSeed),
		meter:  NewSampleRingBuffer(MeterSamples),
		logger: logger,
	}, nil
}

// Meter holds the most recently played samples.
func (p *Player) Meter() *SampleRingBuffer { return p.meter }

func (p *Player) SetNoise(on bool, gain float64) error {
	p.synth.SetNoise(on, gain)
	return p.sync()
}

func (p *Player) StartTone(freqHz, gain float64) error {
	p.synth.StartTone(freqHz, gain)
	return p.sync()
}

func (p *Player) StopTone() error {
	p.synth.StopTone()
	return p.sync()
}

// IsStarted reports whether a playback device is currently open.
func (p *Player) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.mgDevice != nil && p.mgDevice.IsStarted()
}

// Close releases the device. The player cannot be used afterwards.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.deallocMGDevice()

	return nil
}

// sync opens or releases the device to match whether the synth is audible.
func (p *Player) sync() error {
	active := p.synth.Active()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	switch {
	case active && p.mgDevice == nil:
		if err := p.allocMGDevice(); err != nil {
			return err
		}

		if err := p.mgDevice.Start(); err != nil {
			p.deallocMGDevice()
			return fmt.Errorf("failed to start malgo device: %w", err)
		}

		p.logger.Debug("playback device started", "sample_rate", p.conf.SampleRate)

	case !active && p.mgDevice != nil:
		p.deallocMGDevice()
		p.meter.Reset()
		p.logger.Debug("playback device released")
	}

	return nil
}

func (p *Player) allocMGDevice() error {
	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Playback)
	devCnf.Playback.Format = p.conf.Format()
	devCnf.Playback.Channels = uint32(p.conf.Channels)
	devCnf.SampleRate = uint32(p.conf.SampleRate)

	callBacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, _ uint32) {
			p.meter.Write(p.synth.RenderS16LE(output, p.conf.Channels))
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callBacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return fmt.Errorf("failed to initialize malgo device: %w", err)
	}

	p.mgCtx, p.mgDevice = mgCtx, mgDevice

	return nil
}

func (p *Player) deallocMGDevice() {
	if p.mgDevice == nil {
		return
	}

	p.mgDevice.Uninit()
	uninitializeContext(p.mgCtx)
	p.mgDevice = nil
	p.mgCtx = nil
}

// Info describes a playback device.
type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

// EnumerateDevices lists the available playback devices.
func EnumerateDevices(_ context.Context) ([]Info, error) {
	// An empty context is enough for enumeration.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	playbackDevices, err := devCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to get playback devices: %w", err)
	}

	return collections.Apply(playbackDevices, malgoDeviceInfoToDeviceInfo), nil
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}

	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
