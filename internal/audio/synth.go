package audio

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"sync"
)

const defaultNoiseSeed = 0x5eed

// Synth generates the panel's sounds: a sine test tone and looping white
// noise. Setters are called from the UI goroutine while Render runs on the
// device callback, so all state is guarded by mu.
type Synth struct {
	mu   sync.Mutex
	rate float64

	noise     []float32
	noisePos  int
	noiseOn   bool
	noiseGain float64

	toneOn   bool
	toneFreq float64
	toneGain float64
	phase    float64
}

// NewSynth creates a silent synth for the given sample rate. The noise
// buffer holds NoiseSeconds of uniform samples in [-1, 1).
func NewSynth(sampleRate int, seed uint64) *Synth {
	if seed == 0 {
		seed = defaultNoiseSeed
	}

	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	noise := make([]float32, NoiseSeconds*sampleRate)

	for i := range noise {
		noise[i] = float32(rng.Float64()*2 - 1)
	}

	return &Synth{rate: float64(sampleRate), noise: noise}
}

// SetNoise switches the static on or off at the given gain.
func (s *Synth) SetNoise(on bool, gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noiseOn = on
	s.noiseGain = gain
}

// StartTone starts a sine tone. A running tone restarts at phase zero.
func (s *Synth) StartTone(freqHz, gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.toneOn = true
	s.toneFreq = freqHz
	s.toneGain = gain
	s.phase = 0
}

// StopTone silences the tone.
func (s *Synth) StopTone() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.toneOn = false
}

// Active reports whether anything is audible.
func (s *Synth) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.toneOn || s.noiseOn
}

// Render fills out with mono samples.
func (s *Synth) Render(out []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := 2 * math.Pi * s.toneFreq / s.rate

	for i := range out {
		var v float64

		if s.toneOn {
			v += math.Sin(s.phase) * s.toneGain
			s.phase += step

			if s.phase >= 2*math.Pi {
				s.phase -= 2 * math.Pi
			}
		}

		if s.noiseOn && len(s.noise) > 0 {
			v += float64(s.noise[s.noisePos]) * s.noiseGain
			s.noisePos = (s.noisePos + 1) % len(s.noise)
		}

		out[i] = toInt16(v)
	}
}

// RenderS16LE fills an interleaved S16LE buffer with frames, copying the
// mono signal to every channel. It returns the mono samples it rendered.
func (s *Synth) RenderS16LE(out []byte, channels int) []int16 {
	channels = max(channels, 1)
	frames := len(out) / (2 * channels)
	mono := make([]int16, frames)
	s.Render(mono)

	for f, sample := range mono {
		for c := range channels {
			binary.LittleEndian.PutUint16(out[(f*channels+c)*2:], uint16(sample))
		}
	}

	return mono
}

func toInt16(v float64) int16 {
	v = min(max(v, -1), 1)
	return int16(math.Round(v * math.MaxInt16))
}
