// Package meter provides a TUI component that shows the level of the audio
// the panel is playing.
package meter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alkime/radiopanel/internal/tui/style"
	"github.com/alkime/radiopanel/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// Bar characters, empty to full. Each row of the scope holds 8 levels.
const bars = " ▁▂▃▄▅▆▇█"

const (
	refreshInterval = 50 * time.Millisecond
	fullScale       = 32767.0

	// Peaks below this are shown as silence.
	floorDB = -60.0
)

// TickMsg triggers a redraw.
type TickMsg struct{}

// Model draws recent output as a bar scope (left is older) followed by a
// peak readout in dBFS.
type Model struct {
	levels uictl.Levels[int16]
	width  int
	height int
	label  string
}

// New creates a meter reading from levels, width columns wide and height
// rows tall.
func New(levels uictl.Levels[int16], width, height int) Model {
	return Model{
		levels: levels,
		width:  max(width, 1),
		height: max(height, 1),
		label:  "OUT",
	}
}

// Init returns the first tick.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update keeps the redraw ticking.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, m.tick()
	}

	return m, nil
}

// View renders the scope rows and the peak readout.
func (m Model) View() string {
	var samples []int16
	if m.levels != nil {
		samples = m.levels.Read()
	}

	rows := m.scope(samples)
	rows[len(rows)-1] += " " + m.readout(samples)

	return strings.Join(rows, "\n")
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) scope(samples []int16) []string {
	rows := make([]string, m.height)

	if len(samples) == 0 {
		for i := range rows {
			fill := " "
			if i == m.height-1 {
				fill = "▁"
			}

			rows[i] = style.Muted.Render(strings.Repeat(fill, m.width))
		}

		return rows
	}

	heights := columnHeights(samples, m.width, m.height*8)
	glyphs := []rune(bars)

	for i := range rows {
		base := (m.height - 1 - i) * 8

		var sb strings.Builder
		for _, h := range heights {
			sb.WriteRune(glyphs[min(max(h-base, 0), 8)])
		}

		rows[i] = style.Progress.Render(sb.String())
	}

	return rows
}

func (m Model) readout(samples []int16) string {
	db := PeakDB(samples)
	if db <= floorDB {
		return style.Muted.Render(fmt.Sprintf("%s   --- dB", m.label))
	}

	return style.Label.Render(fmt.Sprintf("%s %5.1f dB", m.label, db))
}

// columnHeights splits samples into width buckets and scales each bucket's
// RMS to 0..top on a square-root curve so quiet static stays visible.
func columnHeights(samples []int16, width, top int) []int {
	out := make([]int, width)
	size := max(len(samples)/width, 1)

	for col := range out {
		start := col * size
		if start >= len(samples) {
			break
		}

		r := rms(samples[start:min(start+size, len(samples))])
		out[col] = min(int(math.Sqrt(r/fullScale)*float64(top)), top)
	}

	return out
}

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// PeakDB returns the peak level of samples in dBFS, or -Inf for silence.
func PeakDB(samples []int16) float64 {
	var peak float64
	for _, s := range samples {
		peak = max(peak, math.Abs(float64(s)))
	}

	if peak == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(min(peak/fullScale, 1))
}
