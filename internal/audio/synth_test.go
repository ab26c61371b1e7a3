package audio_test

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/alkime/radiopanel/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peak(samples []int16) int {
	var p int
	for _, s := range samples {
		p = max(p, int(math.Abs(float64(s))))
	}

	return p
}

func TestSynth_SilentByDefault(t *testing.T) {
	t.Parallel()

	s := audio.NewSynth(8000, 1)
	assert.False(t, s.Active())

	out := make([]int16, 256)
	s.Render(out)
	assert.Zero(t, peak(out))
}

func TestSynth_TonePeakFollowsGain(t *testing.T) {
	t.Parallel()

	s := audio.NewSynth(8000, 1)
	s.StartTone(1000, 0.3)
	require.True(t, s.Active())

	out := make([]int16, 8000)
	s.Render(out)

	// 1 kHz at 8 kHz sampling hits the crest every 8 samples
	assert.InDelta(t, 0.3*math.MaxInt16, peak(out), 2)
	assert.Zero(t, out[0], "tone starts at phase zero")

	s.StopTone()
	assert.False(t, s.Active())
}

func TestSynth_NoiseLoopsAndScales(t *testing.T) {
	t.Parallel()

	const rate = 100

	s := audio.NewSynth(rate, 42)
	s.SetNoise(true, 0.5)

	first := make([]int16, audio.NoiseSeconds*rate)
	again := make([]int16, audio.NoiseSeconds*rate)
	s.Render(first)
	s.Render(again)

	assert.Equal(t, first, again, "buffer loops")
	assert.LessOrEqual(t, peak(first), int(math.Round(0.5*math.MaxInt16)))
	assert.Positive(t, peak(first))

	same := audio.NewSynth(rate, 42)
	same.SetNoise(true, 0.5)
	replay := make([]int16, audio.NoiseSeconds*rate)
	same.Render(replay)
	assert.Equal(t, first, replay, "seeded noise is reproducible")
}

func TestSynth_MixClips(t *testing.T) {
	t.Parallel()

	s := audio.NewSynth(8000, 1)
	s.StartTone(1000, 1)
	s.SetNoise(true, 1)

	out := make([]int16, 8000)
	s.Render(out)
	assert.LessOrEqual(t, peak(out), math.MaxInt16)
}

func TestSynth_RenderS16LE(t *testing.T) {
	t.Parallel()

	s := audio.NewSynth(8000, 1)
	s.StartTone(1000, 0.5)

	buf := make([]byte, 2*2*16)
	mono := s.RenderS16LE(buf, 2)
	require.Len(t, mono, 16)

	for f, want := range mono {
		left := int16(binary.LittleEndian.Uint16(buf[f*4:]))
		right := int16(binary.LittleEndian.Uint16(buf[f*4+2:]))
		assert.Equal(t, want, left)
		assert.Equal(t, want, right)
	}
}

func TestNull_RecordsAndMeters(t *testing.T) {
	t.Parallel()

	n := audio.NewNull(8000)
	require.NoError(t, n.StartTone(1000, 0.3))
	require.NoError(t, n.SetNoise(true, 0.1))
	require.NoError(t, n.StopTone())

	n.Pump(64)
	assert.Equal(t, 64, n.Meter().Count())
	assert.Equal(t, []string{"tone-start", "noise", "tone-stop"}, n.Calls())

	require.NoError(t, n.Close())
	require.ErrorIs(t, n.SetNoise(false, 0), audio.ErrClosed)
}

func TestNull_RunFillsMeter(t *testing.T) {
	t.Parallel()

	n := audio.NewNull(8000)
	require.NoError(t, n.StartTone(1000, 0.5))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})

	go func() {
		defer close(done)
		n.Run(ctx, 5*time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		return n.Meter().Count() >= 200
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.Greater(t, peak(n.Meter().ReadSamples(200)), 8000)
}

func TestDeviceConfig(t *testing.T) {
	t.Parallel()

	conf := audio.DeviceConfig{}.WithDefaults()
	require.NoError(t, conf.Validate())
	assert.Equal(t, audio.DefaultSampleRate, conf.SampleRate)
	assert.Equal(t, audio.DefaultChannels, conf.Channels)

	require.Error(t, audio.DeviceConfig{SampleRate: 8000, Channels: 6}.Validate())
	require.Error(t, audio.DeviceConfig{Channels: 1}.Validate())
}
