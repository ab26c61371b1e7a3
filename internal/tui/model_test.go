package tui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/alkime/radiopanel/internal/panel"
	"github.com/alkime/radiopanel/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// outputChecker provides helpers for testing teatest output.
type outputChecker struct {
	intervl, timeout time.Duration
}

func defaultChecker() outputChecker {
	return outputChecker{
		intervl: 100 * time.Millisecond,
		timeout: 3 * time.Second,
	}
}

func (o outputChecker) check(t *testing.T, tm *teatest.TestModel, checkFunc func(buf []byte) bool) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), checkFunc,
		teatest.WithCheckInterval(o.intervl),
		teatest.WithDuration(o.timeout))
}

func (o outputChecker) checkString(t *testing.T, tm *teatest.TestModel, substr string) {
	t.Helper()
	o.check(t, tm, func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	})
}

func newPanel(t *testing.T) *panel.Panel {
	t.Helper()

	p, err := panel.New(panel.DefaultProfile(), nil)
	require.NoError(t, err)

	return p
}

func newModel(t *testing.T, p *panel.Panel) tui.Model {
	t.Helper()

	return tui.New(p, tui.Options{CellAspect: 2})
}

func send(m tui.Model, msgs ...tea.Msg) tui.Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(tui.Model)
	}

	return m
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

// centerOf returns the cell at the center of a control block.
func centerOf(t *testing.T, m tui.Model, name string) (int, int) {
	t.Helper()

	r, ok := m.Rect(name)
	require.True(t, ok, name)

	return r.X + (r.W-1)/2, r.Y + (r.H-1)/2
}

func TestModel_Layout(t *testing.T) {
	t.Parallel()

	m := newModel(t, newPanel(t))
	names := []string{
		panel.Channel, panel.FreqHundreds, panel.FreqUnits, panel.FreqTenths, panel.FreqHundredths,
		panel.Function, tui.ToneRegion, panel.Volume, panel.Mode, tui.SquelchRegion,
	}

	var rects []struct{ x, y, w, h int }
	for _, name := range names {
		r, ok := m.Rect(name)
		require.True(t, ok, name)
		assert.Equal(t, 11, r.W, name)
		assert.Equal(t, 5, r.H, name)
		rects = append(rects, struct{ x, y, w, h int }{r.X, r.Y, r.W, r.H})
	}

	// no two controls overlap
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			apart := a.x+a.w <= b.x || b.x+b.w <= a.x || a.y+a.h <= b.y || b.y+b.h <= a.y
			assert.True(t, apart, "%s overlaps %s", names[i], names[j])
		}
	}

	// the view draws each block where its rectangle says
	lines := bytes.Split([]byte(m.View()), []byte("\n"))
	r, _ := m.Rect(panel.Mode)
	require.Greater(t, len(lines), r.Y+1)
	assert.Contains(t, string(lines[r.Y+1]), "MODE")
}

func TestModel_DragSelectsMode(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	cx, cy := centerOf(t, m, panel.Mode)

	// quarter turn clockwise from 3 o'clock to 6 o'clock: 3 steps, clamped
	m = send(m,
		mouse(tea.MouseActionPress, cx+4, cy),
		mouse(tea.MouseActionMotion, cx, cy+2),
		mouse(tea.MouseActionRelease, cx, cy+2),
	)

	assert.Equal(t, panel.ModeGuard, p.State().Mode)
	assert.Equal(t, "243.00", p.State().Frequency)
	assert.Equal(t, panel.Mode, m.Focused())
}

func TestModel_DragContinuesOutsideControl(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	cx, cy := centerOf(t, m, panel.Volume)

	m = send(m, mouse(tea.MouseActionPress, cx+4, cy))
	m = send(m, mouse(tea.MouseActionMotion, cx, cy+10))
	assert.Equal(t, 83, p.State().Volume)

	// after release further motion does nothing
	m = send(m, mouse(tea.MouseActionRelease, cx, cy+10))
	send(m, mouse(tea.MouseActionMotion, cx-4, cy))
	assert.Equal(t, 83, p.State().Volume)
}

func TestModel_DragChannelWheel(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	cx, cy := centerOf(t, m, panel.Channel)

	m = send(m, mouse(tea.MouseActionPress, cx, cy), mouse(tea.MouseActionMotion, cx, cy-1))
	assert.Equal(t, 15, p.State().PresetChannel)

	m = send(m, mouse(tea.MouseActionMotion, cx, cy-2))
	assert.Equal(t, 16, p.State().PresetChannel)

	send(m, mouse(tea.MouseActionMotion, cx, cy+1))
	assert.Equal(t, 13, p.State().PresetChannel)
}

func TestModel_DragReachesEveryChannel(t *testing.T) {
	t.Parallel()

	profile := panel.DefaultProfile()
	profile.Initial.Channel = 20

	p, err := panel.New(profile, nil)
	require.NoError(t, err)

	m := newModel(t, p)
	cx, cy := centerOf(t, m, panel.Channel)
	m = send(m, mouse(tea.MouseActionPress, cx, cy))

	visited := map[int]bool{p.State().PresetChannel: true}
	for rows := 1; rows < 20; rows++ {
		m = send(m, mouse(tea.MouseActionMotion, cx, cy+rows))
		assert.Equal(t, 20-rows, p.State().PresetChannel, "%d rows down", rows)
		visited[p.State().PresetChannel] = true
	}

	send(m, mouse(tea.MouseActionRelease, cx, cy+19))
	assert.Len(t, visited, 20)
}

func TestModel_BlurEndsGesture(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	x, y := centerOf(t, m, tui.ToneRegion)

	m = send(m, mouse(tea.MouseActionPress, x, y))
	assert.True(t, p.ToneHeld())

	m = send(m, tea.BlurMsg{})
	assert.False(t, p.ToneHeld())

	vx, vy := centerOf(t, m, panel.Volume)
	send(m, mouse(tea.MouseActionMotion, vx, vy+5))
	assert.Equal(t, 50, p.State().Volume)
}

func TestModel_DoubleClickSteps(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	cx, cy := centerOf(t, m, panel.FreqUnits)

	send(m,
		mouse(tea.MouseActionPress, cx+3, cy),
		mouse(tea.MouseActionRelease, cx+3, cy),
		mouse(tea.MouseActionPress, cx+3, cy),
		mouse(tea.MouseActionRelease, cx+3, cy),
	)

	assert.Equal(t, "315.75", p.State().Frequency)
}

func TestModel_ClickSquelchAndWheel(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	sx, sy := centerOf(t, m, tui.SquelchRegion)

	m = send(m, mouse(tea.MouseActionPress, sx, sy), mouse(tea.MouseActionRelease, sx, sy))
	assert.False(t, p.State().Squelch)

	fx, fy := centerOf(t, m, panel.Function)
	send(m, tea.MouseMsg{X: fx, Y: fy, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, panel.FunctionMain, p.State().Function)
	assert.True(t, p.State().StaticActive)
}

func TestModel_PressOutsideControls(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	before := p.State()

	send(m, mouse(tea.MouseActionPress, 0, 0), mouse(tea.MouseActionMotion, 30, 30))
	assert.Equal(t, before, p.State())
}

func TestModel_Keyboard(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	m := newModel(t, p)
	require.Equal(t, panel.Channel, m.Focused())

	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 15, p.State().PresetChannel)

	m = send(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, tui.SquelchRegion, m.Focused())

	m = send(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, panel.FreqHundreds, m.Focused())

	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "205.75", p.State().Frequency)

	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, p.State().Squelch)

	send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	assert.True(t, p.ToneHeld())
}

func TestModel_HeaderShowsFocus(t *testing.T) {
	t.Parallel()

	m := newModel(t, newPanel(t))
	assert.Contains(t, m.View(), "FOCUS: CHAN")

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "FOCUS: 100 MHz")
	assert.Contains(t, m.View(), "? more keys")
}

func TestModel_RendersStatus(t *testing.T) {
	t.Parallel()

	p := newPanel(t)
	tm := teatest.NewTestModel(t, newModel(t, p), teatest.WithInitialTermSize(100, 40))
	checker := defaultChecker()

	checker.checkString(t, tm, "305.75 MHz  OFF  MANUAL  SQL ON")

	for range 5 {
		tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	}

	// focus is on the function selector, then the mode selector
	tm.Send(tea.KeyMsg{Type: tea.KeyRight})
	for range 3 {
		tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	}

	tm.Send(tea.KeyMsg{Type: tea.KeyRight})
	checker.checkString(t, tm, "PRESET CHANNEL 14")

	tm.Send(tea.KeyMsg{Type: tea.KeyRight})
	checker.checkString(t, tm, "GUARD FREQUENCY - 243.00 MHz")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	st := p.State()
	assert.Equal(t, panel.FunctionMain, st.Function)
	assert.True(t, st.Guard)
}

func TestModel_QuitCancels(t *testing.T) {
	t.Parallel()

	canceled := false
	p := newPanel(t)
	m := tui.New(p, tui.Options{Cancel: func() { canceled = true }})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, canceled)
}
