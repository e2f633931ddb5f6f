package tui

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"

	"hapticedit/analysis"
	"hapticedit/config"
	"hapticedit/editor"
	"hapticedit/theme"
)

// 80x30 gives 74x12 cell plots over 4 seconds; the intensity plot starts
// on row 2 and column 6.
func newTestModel(t *testing.T) Model {
	t.Helper()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.Editor.ExportDir = t.TempDir()
	m := NewModel(cfg, theme.New(theme.Plasma()), nil)
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, x, y int, b tea.MouseButton) Model {
	return update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: b})
}

func move(t *testing.T, m Model, x, y int) Model {
	return update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
}

func release(t *testing.T, m Model, x, y int) Model {
	return update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})
}

func key(t *testing.T, m Model, s string) Model {
	switch s {
	case "ctrl+s":
		return update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	case "esc":
		return update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	}
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestLayout(t *testing.T) {
	m := newTestModel(t)
	if m.bounds.plotW != 74 || m.bounds.plotH != 12 {
		t.Fatalf("plot = %dx%d, want 74x12", m.bounds.plotW, m.bounds.plotH)
	}
	if m.bounds.sharpnessTop != 15 {
		t.Fatalf("sharpnessTop = %d, want 15", m.bounds.sharpnessTop)
	}
	vp := m.Session.Viewport
	if vp.Width != 74 || vp.Height != 11 {
		t.Fatalf("viewport = %vx%v, want 74x11", vp.Width, vp.Height)
	}
}

func TestClickCreatesTransient(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, 43, 7, tea.MouseButtonLeft)
	m = release(t, m, 43, 7)

	ts := m.Session.Events.Transients()
	if len(ts) != 1 {
		t.Fatalf("transients = %d, want 1", len(ts))
	}
	if got := ts[0].Time(); math.Abs(got-2) > 1e-9 {
		t.Fatalf("time = %v, want 2", got)
	}
	if got, want := ts[0].Intensity.Value, 1-5.0/11; math.Abs(got-want) > 1e-9 {
		t.Fatalf("intensity = %v, want %v", got, want)
	}
}

func TestDragCreatesContinuous(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, 20, 7, tea.MouseButtonLeft)
	m = move(t, m, 40, 7)
	m = move(t, m, 60, 7)
	m = release(t, m, 60, 7)

	if got := len(m.Session.Events.Continuous()); got != 1 {
		t.Fatalf("continuous events = %d, want 1", got)
	}
	if m.Session.State() != editor.StateIdle {
		t.Fatalf("state = %s, want idle", m.Session.State())
	}
}

func TestRightClickDeletes(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, 43, 7, tea.MouseButtonLeft)
	m = release(t, m, 43, 7)
	m = press(t, m, 43, 7, tea.MouseButtonRight)
	m = release(t, m, 43, 7)

	if got := m.Session.Events.Len(); got != 0 {
		t.Fatalf("events = %d, want 0", got)
	}
}

func TestPointerLeaveCancelsGesture(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, 20, 7, tea.MouseButtonLeft)
	m = move(t, m, 40, 0)
	m = release(t, m, 40, 0)

	if got := m.Session.Events.Len(); got != 0 {
		t.Fatalf("events = %d, want 0", got)
	}
	if m.Session.State() != editor.StateIdle {
		t.Fatalf("state = %s, want idle", m.Session.State())
	}
}

func TestClickOutsidePlots(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, 2, 7, tea.MouseButtonLeft)
	m = release(t, m, 2, 7)
	if got := m.Session.Events.Len(); got != 0 {
		t.Fatalf("events = %d, want 0", got)
	}
}

func TestSaveEmpty(t *testing.T) {
	m := newTestModel(t)
	m = key(t, m, "ctrl+s")
	if !m.statusErr || !strings.Contains(m.status, "nothing to export") {
		t.Fatalf("status = %q (err %v), want empty export error", m.status, m.statusErr)
	}
}

func TestSaveAndOpen(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, 43, 7, tea.MouseButtonLeft)
	m = release(t, m, 43, 7)
	m = key(t, m, "f")
	m = key(t, m, "ctrl+s")
	if m.statusErr {
		t.Fatalf("save: %s", m.status)
	}
	want := filepath.Join(m.Config.Editor.ExportDir, "untitled.haptic")
	if m.path != want {
		t.Fatalf("path = %q, want %q", m.path, want)
	}
	if len(m.Config.Editor.RecentFiles) != 1 {
		t.Fatalf("recent = %v, want one entry", m.Config.Editor.RecentFiles)
	}

	saved := m.path
	m = key(t, m, "n")
	if m.Session.Events.Len() != 0 || m.path != "" {
		t.Fatalf("new: %d events, path %q", m.Session.Events.Len(), m.path)
	}

	m = m.Open(saved)
	if m.statusErr {
		t.Fatalf("open: %s", m.status)
	}
	if got := len(m.Session.Events.Transients()); got != 1 {
		t.Fatalf("transients = %d, want 1", got)
	}
}

func TestOpenMissingKeepsDocument(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, 43, 7, tea.MouseButtonLeft)
	m = release(t, m, 43, 7)

	m = m.Open(filepath.Join(t.TempDir(), "missing.ahap"))
	if !m.statusErr {
		t.Fatalf("expected open error")
	}
	if got := m.Session.Events.Len(); got != 1 {
		t.Fatalf("events = %d, want 1", got)
	}
}

func TestPrompt(t *testing.T) {
	m := newTestModel(t)
	m = key(t, m, "o")
	if m.prompt != promptOpen {
		t.Fatalf("prompt = %v, want open", m.prompt)
	}
	// keys go to the prompt, not the editor
	m = key(t, m, "n")
	if got := m.input.Value(); got != "n" {
		t.Fatalf("input = %q, want n", got)
	}
	m = key(t, m, "esc")
	if m.prompt != promptNone {
		t.Fatalf("prompt = %v, want none", m.prompt)
	}
}

func rampClip() *analysis.Clip {
	const rate = 8192
	samples := make([]float64, rate)
	for i := range samples {
		amp := float64(i) / rate
		samples[i] = amp * math.Sin(2*math.Pi*1024*float64(i)/rate)
	}
	return &analysis.Clip{Samples: samples, SampleRate: rate}
}

func TestGeneratedEnvelope(t *testing.T) {
	m := newTestModel(t)
	clip := rampClip()
	frames, err := analysis.Analyze(clip, 256)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	msg := generatedMsg{kind: promptEnvelope, path: "ramp.wav", clip: clip, frames: frames}
	m = update(t, m, msg)
	if m.statusErr {
		t.Fatalf("envelope: %s", m.status)
	}
	if got := len(m.Session.Events.Continuous()); got != 1 {
		t.Fatalf("continuous events = %d, want 1", got)
	}
	if m.ref == nil || len(m.ref.rms) != frames.Len() {
		t.Fatalf("reference not kept")
	}

	// a second envelope over the same span is refused
	m = update(t, m, msg)
	if !m.statusErr {
		t.Fatalf("expected overlap error")
	}
	if got := len(m.Session.Events.Continuous()); got != 1 {
		t.Fatalf("continuous events = %d, want 1", got)
	}
}

func TestPreviewWithoutReference(t *testing.T) {
	m := newTestModel(t)
	m = key(t, m, "p")
	if !m.statusErr {
		t.Fatalf("expected preview error without reference audio")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	for _, want := range []string{"hapticedit", "intensity", "sharpness", "4.00s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}
