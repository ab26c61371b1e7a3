package audio

import (
	"sync"

	"github.com/alkime/radiopanel/pkg/uictl"
)

// SampleRingBuffer keeps the most recent output samples for the level
// meter. The device callback writes while the UI reads.
type SampleRingBuffer struct {
	mu      sync.RWMutex
	samples []int16
	next    int
	filled  bool
}

// NewSampleRingBuffer creates a ring buffer holding capacity samples.
func NewSampleRingBuffer(capacity int) *SampleRingBuffer {
	return &SampleRingBuffer{samples: make([]int16, max(capacity, 1))}
}

// Write appends samples, overwriting the oldest once full.
func (b *SampleRingBuffer) Write(samples []int16) {
	if len(samples) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// only the tail can survive a write longer than the buffer
	if over := len(samples) - len(b.samples); over > 0 {
		samples = samples[over:]
	}

	n := copy(b.samples[b.next:], samples)
	if n < len(samples) {
		copy(b.samples, samples[n:])
	}

	b.filled = b.filled || b.next+len(samples) >= len(b.samples)
	b.next = (b.next + len(samples)) % len(b.samples)
}

// ReadSamples returns up to n of the most recent samples, oldest first.
func (b *SampleRingBuffer) ReadSamples(n int) []int16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n = min(n, b.count())
	if n <= 0 {
		return nil
	}

	out := make([]int16, n)
	start := (b.next - n + len(b.samples)) % len(b.samples)

	k := copy(out, b.samples[start:])
	if k < n {
		copy(out[k:], b.samples)
	}

	return out
}

// Count returns the number of buffered samples.
func (b *SampleRingBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.count()
}

// Reset drops every buffered sample.
func (b *SampleRingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next = 0
	b.filled = false
}

// Window is a uictl.Levels view of the latest n samples.
func (b *SampleRingBuffer) Window(n int) uictl.Levels[int16] {
	return window{buf: b, n: n}
}

func (b *SampleRingBuffer) count() int {
	if b.filled {
		return len(b.samples)
	}

	return b.next
}

type window struct {
	buf *SampleRingBuffer
	n   int
}

func (w window) Read() []int16 { return w.buf.ReadSamples(w.n) }
