// Package tui renders the radio panel in a terminal and feeds mouse and
// keyboard input to its controls.
//
// Controls are drawn as fixed-size blocks so every control keeps the same
// screen rectangle. Those rectangles are registered with a pointer.Router,
// which owns the press/drag/release gesture across the whole screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alkime/radiopanel/internal/control"
	"github.com/alkime/radiopanel/internal/panel"
	"github.com/alkime/radiopanel/internal/pointer"
	"github.com/alkime/radiopanel/internal/tui/components/knob"
	"github.com/alkime/radiopanel/internal/tui/components/meter"
	"github.com/alkime/radiopanel/internal/tui/style"
	"github.com/alkime/radiopanel/pkg/uictl"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Region names of the two panel buttons. Knobs use their control name.
const (
	SquelchRegion = "squelch"
	ToneRegion    = "tone"
)

const (
	title       = "UHF RADIO CONTROL PANEL"
	headerLines = 2
	meterWidth  = 40
	meterHeight = 2
)

var labels = map[string]string{
	panel.Channel:        "CHAN",
	panel.FreqHundreds:   "100 MHz",
	panel.FreqUnits:      "10 MHz",
	panel.FreqTenths:     "1 MHz",
	panel.FreqHundredths: ".01 MHz",
	panel.Function:       "FUNCTION",
	panel.Volume:         "VOL",
	panel.Mode:           "MODE",
	SquelchRegion:        "SQUELCH",
	ToneRegion:           "TONE",
}

// Options configures the panel UI.
type Options struct {
	// Cancel is called when the user quits.
	Cancel context.CancelFunc
	// Levels feeds the output meter. Nil shows silence.
	Levels uictl.Levels[int16]
	// CellAspect is the height of a terminal cell divided by its width.
	CellAspect float64
	// PixelsPerRow is how many pixels one cell row stands for when dragging
	// the channel wheel. Zero makes one row one channel step.
	PixelsPerRow float64
	Logger       *slog.Logger
	Now          func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	panel  *panel.Panel
	router *pointer.Router
	keys   KeyMap
	help   help.Model
	meter  meter.Model
	cancel context.CancelFunc
	logger *slog.Logger

	rows  [][]string
	order []string
	focus int
}

// New builds the UI for p and registers every control's screen rectangle.
func New(p *panel.Panel, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.PixelsPerRow <= 0 {
		if c, ok := p.Control(panel.Channel); ok {
			opts.PixelsPerRow = c.Profile().Sensitivity
		}
	}

	rows := [][]string{
		{panel.Channel},
		{panel.FreqHundreds, panel.FreqUnits, panel.FreqTenths, panel.FreqHundredths},
		{panel.Function, ToneRegion, panel.Volume},
		{panel.Mode, SquelchRegion},
	}
	if knobs := p.KnobNames(); len(knobs) > 0 {
		rows = append(rows, knobs)
	}

	var order []string
	for _, row := range rows {
		order = append(order, row...)
	}

	m := Model{
		panel: p,
		router: pointer.NewRouter(pointer.Options{
			Aspect:        opts.CellAspect,
			PixelsPerUnit: opts.PixelsPerRow,
			Logger:        opts.Logger,
			Now:           opts.Now,
		}),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		meter:  meter.New(opts.Levels, meterWidth, meterHeight),
		cancel: opts.Cancel,
		logger: opts.Logger,
		rows:   rows,
		order:  order,
	}

	_, rects := m.layout()
	for _, name := range order {
		m.router.Register(name, rects[name], m.target(name))
	}

	return m
}

// Rect returns the screen rectangle of the named control.
func (m Model) Rect(name string) (pointer.Rect, bool) {
	reg, ok := m.router.Region(name)
	return reg.Rect, ok
}

// Focused returns the name of the control keyboard input goes to.
func (m Model) Focused() string { return m.order[m.focus] }

func (m Model) Init() tea.Cmd {
	return m.meter.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.BlurMsg:
		// Losing focus loses the pointer: end any gesture as if released.
		m.router.Cancel()

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.router.Cancel()
			if m.cancel != nil {
				m.cancel()
			}

			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.focus = (m.focus + 1) % len(m.order)
		case key.Matches(msg, m.keys.Prev):
			m.focus = (m.focus + len(m.order) - 1) % len(m.order)
		case key.Matches(msg, m.keys.Down):
			m.step(m.Focused(), -1)
		case key.Matches(msg, m.keys.Up):
			m.step(m.Focused(), 1)
		case key.Matches(msg, m.keys.Squelch):
			m.panel.ToggleSquelch()
		case key.Matches(msg, m.keys.Tone):
			if m.panel.ToneHeld() {
				m.panel.ReleaseTone()
			} else {
				m.panel.PressTone()
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	m.meter, cmd = m.meter.Update(msg)

	return m, cmd
}

func (m Model) View() string {
	controls, _ := m.layout()

	sections := []string{
		controls,
		"",
		m.status(),
		m.notice(),
		"",
		m.meter.View(),
		"",
		style.Help.Render(m.help.View(m.keys)),
	}

	return strings.Join(sections, "\n")
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	pt := control.Point{X: float64(msg.X), Y: float64(msg.Y)}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			name, err := m.router.Press(pt)
			if err != nil {
				if !errors.Is(err, pointer.ErrNoTarget) {
					m.logger.Warn("pointer press failed", "region", name, "error", err)
				}

				return
			}

			m.focusOn(name)

		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			reg, ok := m.router.Hit(msg.X, msg.Y)
			if !ok {
				return
			}

			dir := 1
			if msg.Button == tea.MouseButtonWheelDown {
				dir = -1
			}

			m.focusOn(reg.Name)
			m.step(reg.Name, dir)
		}

	case tea.MouseActionMotion:
		if err := m.router.Move(pt); err != nil {
			m.logger.Warn("pointer move failed", "error", err)
		}

	case tea.MouseActionRelease:
		m.router.Release()
	}
}

func (m *Model) focusOn(name string) {
	for i, n := range m.order {
		if n == name {
			m.focus = i
			return
		}
	}
}

// step nudges the named control one position. Squelch reads right as on.
func (m Model) step(name string, dir int) {
	switch name {
	case SquelchRegion:
		m.panel.SetSquelch(dir > 0)
	case ToneRegion:
		// momentary; nothing to step
	default:
		if sel, ok := m.selector(name); ok {
			sel.Step(dir)
		}
	}
}

func (m Model) selector(name string) (uictl.Selector, bool) {
	c, ok := m.panel.Control(name)
	if !ok {
		return nil, false
	}

	return c, true
}

func (m Model) target(name string) pointer.Target {
	switch name {
	case SquelchRegion:
		return pointer.Button{OnDown: m.panel.ToggleSquelch}
	case ToneRegion:
		return pointer.Button{OnDown: m.panel.PressTone, OnUp: m.panel.ReleaseTone}
	}

	c, _ := m.panel.Control(name)

	return pointer.ControlTarget{Control: c}
}

// layout renders the control rows and reports where each control landed.
func (m Model) layout() (string, map[string]pointer.Rect) {
	rects := make(map[string]pointer.Rect, len(m.order))
	lines := []string{
		style.Title.Render(title),
		style.Subtitle.Render("FOCUS: " + labelFor(m.Focused())),
	}
	y := headerLines

	for _, row := range m.rows {
		var (
			blocks []string
			x      int
		)

		for i, name := range row {
			if i > 0 {
				gap := gapBefore(name)
				blocks = append(blocks, gap)
				x += lipgloss.Width(gap)
			}

			block := m.block(name)
			w, h := lipgloss.Size(block)
			rects[name] = pointer.Rect{X: x, Y: y, W: w, H: h}
			blocks = append(blocks, block)
			x += w
		}

		joined := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
		lines = append(lines, joined)
		y += lipgloss.Height(joined)
	}

	return strings.Join(lines, "\n"), rects
}

// gapBefore separates blocks in a row. The hundredths knob sits after the
// decimal point.
func gapBefore(name string) string {
	if name == panel.FreqHundredths {
		return " \n \n.\n \n "
	}

	return " "
}

func (m Model) block(name string) string {
	st := knob.Idle
	if held, ok := m.router.Captured(); ok && held == name {
		st = knob.Held
	} else if m.Focused() == name {
		st = knob.Focused
	}

	switch name {
	case SquelchRegion:
		return knob.Switch(labels[name], m.panel.State().Squelch, st)
	case ToneRegion:
		return knob.Button(labels[name], m.panel.ToneHeld(), st)
	}

	c, _ := m.panel.Control(name)

	return knob.View(labelFor(name), c, st)
}

// labelFor falls back to the upper-cased name for profile knobs.
func labelFor(name string) string {
	if label, ok := labels[name]; ok {
		return label
	}

	return strings.ToUpper(name)
}

// status reads like "305.75 MHz  OFF  MANUAL  SQL ON".
func (m Model) status() string {
	st := m.panel.State()

	freq := st.Frequency + " MHz"
	if st.PoweredOn {
		freq = style.Lit.Render(freq)
	} else {
		freq = style.Muted.Render(freq)
	}

	sql := style.Info.Render("SQL ON")
	if !st.Squelch {
		sql = style.Warning.Render("SQL OFF")
	}

	parts := []string{freq, st.Function, st.Mode, sql}
	if st.ToneActive {
		parts = append(parts, style.Label.Render("TONE"))
	}

	return strings.Join(parts, "  ")
}

func (m Model) notice() string {
	st := m.panel.State()

	switch {
	case st.Guard:
		return style.Error.Render("GUARD FREQUENCY - " + st.Frequency + " MHz")
	case st.Mode == panel.ModePreset:
		return style.Info.Render(fmt.Sprintf("PRESET CHANNEL %d", st.PresetChannel))
	}

	return ""
}
