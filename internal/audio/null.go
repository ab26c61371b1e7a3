package audio

import (
	"context"
	"sync"
	"time"
)

// Null is an Output that plays nothing. It runs the synth into its meter
// on demand and remembers what it was asked to do, which is all a headless
// run or a test needs.
type Null struct {
	mu     sync.Mutex
	rate   int
	synth  *Synth
	meter  *SampleRingBuffer
	calls  []string
	closed bool
}

// NewNull creates a silent output rendering at sampleRate.
func NewNull(sampleRate int) *Null {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return &Null{
		rate:  sampleRate,
		synth: NewSynth(sampleRate, 0),
		meter: NewSampleRingBuffer(MeterSamples),
	}
}

func (n *Null) SetNoise(on bool, gain float64) error {
	n.synth.SetNoise(on, gain)
	return n.record("noise")
}

func (n *Null) StartTone(freqHz, gain float64) error {
	n.synth.StartTone(freqHz, gain)
	return n.record("tone-start")
}

func (n *Null) StopTone() error {
	n.synth.StopTone()
	return n.record("tone-stop")
}

func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true

	return nil
}

// Calls lists the operations received so far.
func (n *Null) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.calls...)
}

// Meter holds the samples produced by Pump.
func (n *Null) Meter() *SampleRingBuffer { return n.meter }

// Pump renders frames mono samples into the meter as a device would.
func (n *Null) Pump(frames int) {
	out := make([]int16, frames)
	n.synth.Render(out)
	n.meter.Write(out)
}

// Run pumps one interval's worth of frames every interval until ctx is done,
// so the meter moves as it would with a real device.
func (n *Null) Run(ctx context.Context, interval time.Duration) {
	frames := max(1, int(float64(n.rate)*interval.Seconds()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.Pump(frames)
		}
	}
}

func (n *Null) record(op string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}

	n.calls = append(n.calls, op)

	return nil
}
