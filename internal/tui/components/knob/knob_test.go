package knob_test

import (
	"strings"
	"testing"

	"github.com/alkime/radiopanel/internal/control"
	"github.com/alkime/radiopanel/internal/tui/components/knob"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestPointer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		angle float64
		want  string
	}{
		{0, "↑"},
		{22, "↑"},
		{23, "↗"},
		{90, "→"},
		{180, "↓"},
		{-90, "←"},
		{315, "↖"},
		{350, "↑"},
		{720, "↑"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, knob.Pointer(tt.angle), "angle %v", tt.angle)
	}
}

func TestView_FixedSize(t *testing.T) {
	t.Parallel()

	mode := control.MustNew(control.Config{
		Name:    "mode",
		Profile: control.ModeSelector,
		Options: []string{"MANUAL", "PRESET", "GUARD"},
	})
	volume := control.MustNew(control.Config{
		Name:         "volume",
		Profile:      control.VolumeKnob,
		Bounds:       control.Bounds{Min: 0, Max: 100},
		InitialValue: 50,
	})
	channel := control.MustNew(control.Config{
		Name:    "channel",
		Profile: control.ChannelWheel,
		Options: control.NumberedOptions(1, 20),
		Initial: "14",
	})

	views := []string{
		knob.View("MODE", mode, knob.Idle),
		knob.View("VOL", volume, knob.Focused),
		knob.View("CHAN", channel, knob.Held),
		knob.Switch("SQL", true, knob.Idle),
		knob.Button("TONE", false, knob.Idle),
		knob.View("A VERY LONG LABEL", mode, knob.Idle),
	}

	for _, v := range views {
		assert.Equal(t, knob.Width+2, lipgloss.Width(v), v)
		assert.Equal(t, knob.Height+2, lipgloss.Height(v), v)
	}
}

func TestView_Content(t *testing.T) {
	t.Parallel()

	volume := control.MustNew(control.Config{
		Name:         "volume",
		Profile:      control.VolumeKnob,
		Bounds:       control.Bounds{Min: 0, Max: 100},
		InitialValue: 50,
	})
	channel := control.MustNew(control.Config{
		Name:    "channel",
		Profile: control.ChannelWheel,
		Options: control.NumberedOptions(1, 20),
		Initial: "14",
	})

	v := knob.View("VOL", volume, knob.Idle)
	assert.Contains(t, v, "VOL")
	assert.Contains(t, v, "50")

	lines := strings.Split(knob.View("CHAN", channel, knob.Idle), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[2], "▲▼")
	assert.Contains(t, lines[3], "14")

	assert.Contains(t, knob.Switch("SQL", false, knob.Idle), "OFF")
	assert.Contains(t, knob.Button("TONE", true, knob.Idle), "(●)")
}
