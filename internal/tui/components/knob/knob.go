// Package knob renders a single panel control as a fixed-size framed block.
package knob

import (
	"math"
	"strconv"
	"strings"

	"github.com/alkime/radiopanel/internal/tui/style"
	"github.com/alkime/radiopanel/pkg/uictl"
	"github.com/charmbracelet/lipgloss"
)

// Inner size of every block. Frames add one cell on each side.
const (
	Width  = 9
	Height = 3
)

// Pointer glyphs clockwise from 12 o'clock, one per 45 degrees.
var pointers = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// Source is what a knob reads to draw itself. Angle reports false for
// controls that have no pointer to draw.
type Source interface {
	uictl.Selector
	Angle() (float64, bool)
}

// State selects the frame style.
type State int

const (
	Idle State = iota
	Focused
	Held
)

// Pointer returns the glyph for a rotation in degrees, 0 pointing up.
func Pointer(angle float64) string {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}

	return pointers[int(math.Floor(a/45+0.5))%len(pointers)]
}

// View renders a rotary or linear control.
func View(label string, src Source, st State) string {
	mark := "▲▼"
	if angle, ok := src.Angle(); ok {
		mark = Pointer(angle)
	}

	value := src.Option()
	if value == "" {
		value = strconv.FormatFloat(src.Read(), 'f', 0, 64)
	}

	return frame(label, mark, value, st)
}

// Switch renders a two-position switch.
func Switch(label string, on bool, st State) string {
	mark, value := "○", "OFF"
	if on {
		mark, value = "●", "ON"
	}

	return frame(label, mark, value, st)
}

// Button renders a push button.
func Button(label string, down bool, st State) string {
	mark := "( )"
	if down {
		mark = "(●)"
	}

	return frame(label, mark, "", st)
}

func frame(label, mark, value string, st State) string {
	lines := []string{
		style.Label.Render(fit(label)),
		fit(mark),
		style.Muted.Render(fit(value)),
	}

	box := style.Control
	switch st {
	case Focused:
		box = style.Focused
	case Held:
		box = style.Held
	}

	return box.Width(Width).Height(Height).Render(strings.Join(lines, "\n"))
}

// fit truncates s to the inner width.
func fit(s string) string {
	r := []rune(s)
	if len(r) > Width {
		r = r[:Width]
	}

	return lipgloss.PlaceHorizontal(Width, lipgloss.Center, string(r))
}
