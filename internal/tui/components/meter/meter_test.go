package meter_test

import (
	"math"
	"strings"
	"testing"

	"github.com/alkime/radiopanel/internal/tui/components/meter"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// mockLevels implements uictl.Levels[int16] for testing.
type mockLevels struct {
	samples []int16
}

func (m *mockLevels) Read() []int16 {
	return m.samples
}

func repeat(v int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func TestMeter_NilLevels(t *testing.T) {
	t.Parallel()

	view := meter.New(nil, 6, 1).View()
	assert.Contains(t, view, "▁▁▁▁▁▁")
	assert.Contains(t, view, "OUT   --- dB")
}

func TestMeter_FullScale(t *testing.T) {
	t.Parallel()

	mock := &mockLevels{samples: repeat(32767, 12)}
	view := meter.New(mock, 6, 2).View()

	lines := strings.Split(view, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "██████", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "██████"))
	assert.Contains(t, lines[1], "OUT   0.0 dB")
}

func TestMeter_SilenceShowsNoReadout(t *testing.T) {
	t.Parallel()

	mock := &mockLevels{samples: repeat(0, 8)}
	view := meter.New(mock, 4, 1).View()

	assert.True(t, strings.HasPrefix(view, "    "))
	assert.Contains(t, view, "---")
}

func TestMeter_ColumnsFollowLoudness(t *testing.T) {
	t.Parallel()

	samples := append(repeat(0, 4), repeat(32767, 4)...)
	view := meter.New(&mockLevels{samples: samples}, 2, 1).View()

	runes := []rune(view)
	require.GreaterOrEqual(t, len(runes), 2)
	assert.Equal(t, ' ', runes[0])
	assert.Equal(t, '█', runes[1])
}

func TestPeakDB(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsInf(meter.PeakDB(nil), -1))
	assert.InDelta(t, 0.0, meter.PeakDB([]int16{-32768}), 1e-9)
	assert.InDelta(t, -6.02, meter.PeakDB([]int16{16384}), 0.01)
}
