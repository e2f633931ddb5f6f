package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hapticedit/analysis"
	"hapticedit/config"
	"hapticedit/debug"
	"hapticedit/editor"
	"hapticedit/haptic"
	"hapticedit/midi"
	"hapticedit/theme"
	"hapticedit/widgets"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptOpen
	promptEnvelope
	promptOnsets
)

func (k promptKind) label() string {
	switch k {
	case promptOpen:
		return "open: "
	case promptEnvelope:
		return "envelope from wav: "
	case promptOnsets:
		return "onsets from wav: "
	}
	return ""
}

// reference is the audio clip the last generator ran on
type reference struct {
	path string
	clip *analysis.Clip
	rms  []float64 // normalized, one value per chunk
	step float64   // chunk duration
}

type Model struct {
	Session  *editor.Session
	Config   *config.Config
	Theme    *theme.Theme
	Preview  analysis.PreviewPort
	Importer haptic.Importer

	path   string
	format haptic.Format
	meta   haptic.Metadata
	ref    *reference

	prompt promptKind
	input  textinput.Model

	status    string
	statusErr bool
	tooltip   string
	showHelp  bool
	quitting  bool

	// pointer gesture in progress
	pressed    bool
	button     editor.Button
	gestureLoc haptic.PlotLocation

	bounds *layoutBounds
}

func NewModel(cfg *config.Config, th *theme.Theme, preview analysis.PreviewPort) Model {
	if preview == nil {
		preview = analysis.NopPreview{}
	}
	format, err := haptic.ParseFormat(cfg.Editor.DefaultFormat)
	if err != nil {
		format = haptic.FormatSparse
	}

	vp := editor.Viewport{Duration: cfg.UI.VisibleSeconds}
	if vp.Duration <= 0 {
		vp.Duration = 4
	}

	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 60

	m := Model{
		Session:  editor.NewSession(haptic.NewEventList(), vp, cfg.Editor.HitTolerancePx),
		Config:   cfg,
		Theme:    th,
		Preview:  preview,
		Importer: haptic.Importer{Fallback: midi.Decoder{}},
		format:   format,
		meta:     haptic.Metadata{ProjectName: cfg.Editor.ProjectName, ProjectVersion: cfg.Editor.ProjectVersion},
		input:    ti,
		bounds:   &layoutBounds{},
	}
	m.resize(80, 24)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) resize(width, height int) {
	m.bounds.resize(width, height)
	vp := m.bounds.viewport(m.Session.Viewport)
	m.Session.Viewport = vp
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.prompt != promptNone {
			return m, nil
		}
		m = m.handleMouse(msg)

	case generatedMsg:
		m = m.applyGenerated(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Preview.StopAll()
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	case "ctrl+s":
		m = m.save(true)

	case "S":
		m = m.save(false)

	case "o":
		return m.startPrompt(promptOpen)

	case "e":
		return m.startPrompt(promptEnvelope)

	case "t":
		return m.startPrompt(promptOnsets)

	case "f":
		if m.format == haptic.FormatSparse {
			m.format = haptic.FormatDense
		} else {
			m.format = haptic.FormatSparse
		}
		m = m.setStatus("format: " + string(m.format))

	case "n":
		m.Session.New()
		m.path = ""
		m.ref = nil
		m.meta = haptic.Metadata{ProjectName: m.Config.Editor.ProjectName, ProjectVersion: m.Config.Editor.ProjectVersion}
		m = m.setStatus("new document")

	case "h", "left":
		m.Session.Viewport.Scroll(-m.Session.Viewport.Duration / 10)

	case "l", "right":
		m.Session.Viewport.Scroll(m.Session.Viewport.Duration / 10)

	case "+", "=":
		m.Session.Viewport.Zoom(0.5)

	case "-", "_":
		m.Session.Viewport.Zoom(2)

	case "0":
		m.Session.Viewport.Start = 0

	case "x", "delete", "backspace":
		if n := m.Session.DeleteSelection(); n > 0 {
			m = m.setStatus(fmt.Sprintf("deleted %d points", n))
		}

	case "p":
		m = m.preview()

	case "esc":
		m.Preview.StopAll()
		m.Session.Selection = editor.Selection{}
		m.showHelp = false
	}
	return m, nil
}

func (m Model) startPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Prompt = kind.label()
	m.input.SetValue("")
	if kind == promptOpen && len(m.Config.Editor.RecentFiles) > 0 {
		m.input.Placeholder = m.Config.Editor.RecentFiles[0]
	} else {
		m.input.Placeholder = ""
	}
	return m, m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.prompt = promptNone
		m.input.Blur()
		return m, nil

	case "enter":
		kind := m.prompt
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			value = m.input.Placeholder
		}
		m.prompt = promptNone
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		path, err := config.ExpandPath(value)
		if err != nil {
			return m.fail("path", err), nil
		}
		if kind == promptOpen {
			return m.Open(path), nil
		}
		m = m.setStatus("analysing " + path + "...")
		return m, generateCmd(kind, path, m.generateOptions())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func toButton(b tea.MouseButton) (editor.Button, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return editor.ButtonLeft, true
	case tea.MouseButtonRight:
		return editor.ButtonRight, true
	case tea.MouseButtonMiddle:
		return editor.ButtonMiddle, true
	}
	return 0, false
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	mods := editor.Modifiers{LockTime: msg.Alt, LockValue: msg.Ctrl, Select: msg.Shift}
	vp := m.Session.Viewport

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.Session.Viewport.Scroll(-vp.Duration / 10)
			return m
		case tea.MouseButtonWheelDown:
			m.Session.Viewport.Scroll(vp.Duration / 10)
			return m
		}
		button, ok := toButton(msg.Button)
		if !ok {
			return m
		}
		loc := m.bounds.locate(msg.X, msg.Y)
		if loc == haptic.PlotOutside {
			return m
		}
		m.pressed, m.button, m.gestureLoc = true, button, loc
		m.Session.PointerDown(m.bounds.toPlot(loc, msg.X, msg.Y, vp), loc, button, mods)

	case tea.MouseActionMotion:
		if m.pressed {
			if !m.bounds.inEditor(msg.X, msg.Y) {
				m.pressed = false
				m.Session.PointerLeave()
				return m
			}
			m.Session.PointerMove(m.bounds.toPlot(m.gestureLoc, msg.X, msg.Y, vp), m.gestureLoc, mods)
			return m
		}
		loc := m.bounds.locate(msg.X, msg.Y)
		if loc == haptic.PlotOutside {
			m.Session.PointerLeave()
			m.tooltip = ""
			return m
		}
		m.Session.PointerMove(m.bounds.toPlot(loc, msg.X, msg.Y, vp), loc, mods)
		m.tooltip = m.hoverTooltip()

	case tea.MouseActionRelease:
		if !m.pressed {
			return m
		}
		m.pressed = false
		m.Session.PointerUp(m.bounds.toPlot(m.gestureLoc, msg.X, msg.Y, vp), m.gestureLoc, m.button, mods)
	}
	return m
}

func (m Model) hoverTooltip() string {
	p := m.Session.Hover
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%s  t=%.3fs  %.2f", m.Session.HoverLoc, p.Time, p.Value)
}

func (m Model) setStatus(s string) Model {
	m.status, m.statusErr = s, false
	return m
}

func (m Model) fail(what string, err error) Model {
	debug.Log("tui", "%s: %v", what, err)
	// multi-line errors (malformed files) only show their first line
	msg, _, _ := strings.Cut(err.Error(), "\n")
	m.status, m.statusErr = what+": "+msg, true
	return m
}

func (m Model) projectName() string {
	if m.meta.ProjectName != "" {
		return m.meta.ProjectName
	}
	return m.Config.Editor.ProjectName
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.BG()).
		Padding(0, 1)

	name := m.projectName()
	if m.path != "" {
		name = m.path
	}
	header := headerStyle.Render(fmt.Sprintf("hapticedit  %s  [%s]  %d events  %s",
		name, m.format, m.Session.Events.Len(), m.Session.State()))

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n")

	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
		return out.String()
	}

	prims := m.Session.Primitives()
	out.WriteString(m.renderPlot(prims, haptic.PlotIntensity, "intensity", m.Theme.Intensity()))
	out.WriteString("\n")
	out.WriteString(m.renderPlot(prims, haptic.PlotSharpness, "sharpness", m.Theme.Sharpness()))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.timeAxis()))
	out.WriteString("\n")

	switch {
	case m.statusErr:
		out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render(m.status))
	case m.tooltip != "":
		out.WriteString(tooltipStyle.Render(m.tooltip))
	default:
		out.WriteString(dimStyle.Render(m.status))
	}
	out.WriteString("\n")

	if m.prompt != promptNone {
		out.WriteString(m.input.View())
	} else {
		out.WriteString(dimStyle.Render("click:add  drag:move/create  right:delete  shift:select  o:open  ctrl+s:save  e/t:generate  ?:help  q:quit"))
	}
	return out.String()
}

func (m Model) renderPlot(prims []editor.Primitive, loc haptic.PlotLocation, title string, color lipgloss.Color) string {
	canvas := widgets.NewCanvas(m.bounds.plotW, m.bounds.plotH, m.Theme)
	if m.ref != nil && loc == haptic.PlotIntensity {
		canvas.DrawWave(m.Session.Viewport, m.ref.rms, m.ref.step)
	}
	canvas.Draw(prims, loc, m.Session.Viewport)

	gutter := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	rows := strings.Split(canvas.Render(), "\n")
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, lipgloss.NewStyle().Foreground(color).Render(title))
	for i, row := range rows {
		label := ""
		switch i {
		case 0:
			label = "1.00"
		case len(rows) / 2:
			if len(rows)%2 == 1 {
				label = "0.50"
			}
		case len(rows) - 1:
			label = "0.00"
		}
		lines = append(lines, gutter.Render(fmt.Sprintf("%4s │", label))+row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) timeAxis() string {
	vp := m.Session.Viewport
	left := fmt.Sprintf("%.2fs", vp.Start)
	right := fmt.Sprintf("%.2fs", vp.End())
	pad := max(1, m.bounds.plotW-len(left)-len(right))
	return strings.Repeat(" ", gutterWidth) + left + strings.Repeat(" ", pad) + right
}

var keyHelp = []widgets.KeySection{
	{
		Title: "Mouse",
		Keys: []widgets.KeyBinding{
			{Key: "click", Desc: "add transient, or add a point inside a continuous event"},
			{Key: "drag", Desc: "move a point, or create a continuous event"},
			{Key: "alt/ctrl", Desc: "lock time / lock value while dragging"},
			{Key: "shift+drag", Desc: "select points"},
			{Key: "right", Desc: "delete point"},
			{Key: "middle", Desc: "delete event"},
			{Key: "wheel", Desc: "scroll"},
		},
	},
	{
		Title: "File",
		Keys: []widgets.KeyBinding{
			{Key: "o", Desc: "open (ahap, haptic, mid)"},
			{Key: "ctrl+s", Desc: "save"},
			{Key: "S", Desc: "save as new file"},
			{Key: "f", Desc: "toggle sparse / dense format"},
			{Key: "n", Desc: "new document"},
		},
	},
	{
		Title: "Edit",
		Keys: []widgets.KeyBinding{
			{Key: "x/del", Desc: "delete selection"},
			{Key: "h/l", Desc: "scroll"},
			{Key: "+/-", Desc: "zoom"},
			{Key: "0", Desc: "back to start"},
			{Key: "e", Desc: "envelope from wav"},
			{Key: "t", Desc: "onsets from wav"},
			{Key: "p", Desc: "play reference audio"},
			{Key: "esc", Desc: "stop playback, clear selection"},
		},
	},
}
